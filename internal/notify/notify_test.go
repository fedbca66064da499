package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/tollgate/internal/config"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
	"github.com/alexanderramin/tollgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejectedIntent() domain.NotificationIntent {
	return domain.NotificationIntent{
		Kind:        domain.NotifyRequestRejected,
		UserID:      "alice",
		Title:       "INV-0001 rejected",
		Message:     "Committee rejected INV-0001: budget frozen",
		RelatedKind: domain.KindInvestment,
		RelatedID:   "req-1",
	}
}

func TestNtfySink_PostsFormattedPayload(t *testing.T) {
	var (
		gotBody    string
		gotHeaders http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewNtfySink(server.URL, time.Second)
	require.NoError(t, sink.Notify(context.Background(), rejectedIntent()))

	assert.Equal(t, "@alice: Committee rejected INV-0001: budget frozen", gotBody)
	assert.Equal(t, "Tollgate - INV-0001 rejected", gotHeaders.Get("Title"))
	assert.Equal(t, "tollgate,request_rejected,investment", gotHeaders.Get("Tags"))
	assert.Equal(t, "high", gotHeaders.Get("Priority"))
	assert.Equal(t, userAgent, gotHeaders.Get("User-Agent"))
}

func TestNtfySink_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic blocked", http.StatusForbidden)
	}))
	defer server.Close()

	err := NewNtfySink(server.URL, time.Second).Notify(context.Background(), rejectedIntent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ntfy returned 403")
	assert.Contains(t, err.Error(), "topic blocked")
}

func TestNtfySink_EmptyEndpointIsNoop(t *testing.T) {
	assert.NoError(t, NewNtfySink("", 0).Notify(context.Background(), rejectedIntent()))
}

func TestStoreSink_WritesInbox(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewStoreSink(database).Notify(ctx, rejectedIntent()))

	inbox, err := repository.NewSQLiteNotificationRepo(database).ListByUser(ctx, "alice", true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotifyRequestRejected, inbox[0].Kind)
	assert.Equal(t, "req-1", inbox[0].RelatedID)
}

func TestLogSink_WarnsOnOperatorAlert(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, NewLogSink(logger).Notify(context.Background(), domain.NotificationIntent{
		Kind:  domain.NotifyOperatorAlert,
		Title: "No eligible approvers",
	}))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "kind=operator_alert")
}

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	failing := &testutil.RecordingSink{Err: errors.New("smtp down")}
	healthy := &testutil.RecordingSink{}

	err := NewFanout(logger, failing, healthy).Notify(context.Background(), rejectedIntent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Len(t, healthy.Intents(), 1, "a failing sink does not block the next one")
	assert.Contains(t, buf.String(), "notification sink failed")
}

func TestNew_SelectsSinks(t *testing.T) {
	database := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.IsType(t, Noop{}, New(config.Notifications{}, database, logger))
	assert.IsType(t, &LogSink{}, New(config.Notifications{Log: true}, database, logger))

	sink := New(config.Notifications{Log: true, Inbox: true, NtfyTopic: "https://ntfy.example/t"}, database, logger)
	fan, ok := sink.(*Fanout)
	require.True(t, ok)
	assert.Equal(t, 3, fan.Len())
}
