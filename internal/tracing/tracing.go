// Package tracing wraps OpenTelemetry so the engine can open spans without
// importing the SDK. Until Init runs, spans are no-ops.
package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/alexanderramin/tollgate"

// Shutdown flushes and stops the installed provider.
type Shutdown func(ctx context.Context) error

// Init installs a global tracer provider exporting to w with the stdout exporter.
func Init(serviceName string, w io.Writer, pretty bool) (Shutdown, error) {
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}
	return InitWithExporter(serviceName, exporter)
}

// InitWithExporter installs a global tracer provider using exporter. Spans are
// exported synchronously as they end.
func InitWithExporter(serviceName string, exporter sdktrace.SpanExporter) (Shutdown, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// Start opens an internal span named name with string attributes.
func Start(ctx context.Context, name string, attrs map[string]string) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	sp := &Span{span: span}
	sp.WithAttributes(attrs)
	return ctx, sp
}

// StartServer opens a server span, used by the HTTP API.
func StartServer(ctx context.Context, name string) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	return ctx, &Span{span: span}
}

func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	s.span.SetAttributes(kv...)
	return s
}

// SetStatusFromHTTPCode marks 5xx responses as errors.
func (s *Span) SetStatusFromHTTPCode(code int) {
	if s == nil {
		return
	}
	s.span.SetAttributes(attribute.Int("http.status_code", code))
	if code >= 500 {
		s.span.SetStatus(codes.Error, "server error")
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// End records err (if any) and ends the span.
func End(s *Span, err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
