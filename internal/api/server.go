// Package api exposes the workflow engine over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alexanderramin/tollgate/internal/service"
	"github.com/alexanderramin/tollgate/internal/tracing"
	"github.com/alexanderramin/tollgate/internal/workflow"
)

// Services are the use cases the handlers call.
type Services struct {
	Engine   service.WorkflowEngine
	Requests service.RequestService
	Tasks    service.TaskService
	Inbox    service.InboxService
	SLA      service.SLAService
	Registry *workflow.Registry
}

type handler struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the chi router for svc.
func NewRouter(svc Services, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.traceAndLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stages/{kind}", h.handleStages)

		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Route("/requests/{code}", func(r chi.Router) {
			r.Get("/", h.handleGetRequest)
			r.Post("/start", h.handleStart)
			r.Post("/decisions", h.handleDecision)
			r.Post("/resubmit", h.handleResubmit)
			r.Get("/history", h.handleHistory)
			r.Get("/tasks", h.handleRequestTasks)
		})

		r.Get("/users/{user}/tasks", h.handleUserTasks)
		r.Get("/users/{user}/inbox", h.handleInbox)
		r.Post("/notifications/{id}/read", h.handleMarkRead)

		r.Post("/sla/sweep", h.handleSweep)
	})
	return r
}

// traceAndLog opens a server span per request and logs the outcome.
func (h *handler) traceAndLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := tracing.StartServer(r.Context(), r.Method+" "+r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			span.WithAttributes(map[string]string{"http.route": rctx.RoutePattern()})
		}
		span.SetStatusFromHTTPCode(status)
		tracing.End(span, nil)

		h.logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
