package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/notify"
	"github.com/alexanderramin/tollgate/internal/repository"
	"github.com/alexanderramin/tollgate/internal/testutil"
)

func TestTaskService_ListForUser(t *testing.T) {
	h := newEngineHarness(t, nil)
	ctx := context.Background()
	svc := NewTaskService(h.tasks)

	first := h.cash(t)
	_, err := h.engine.StartWorkflow(ctx, domain.KindCashRequest, first.ID)
	require.NoError(t, err)
	h.clock.Advance(time.Hour)
	second := h.investment(t)
	_, err = h.engine.StartWorkflow(ctx, domain.KindInvestment, second.ID)
	require.NoError(t, err)

	open, err := svc.ListForUser(ctx, "mgr-2", false)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, first.ID, open[0].RequestID, "soonest due first")
	assert.Equal(t, second.ID, open[1].RequestID)

	_, err = h.decide(domain.KindCashRequest, first.ID, "mgr-1", domain.ActionApprove)
	require.NoError(t, err)

	open, err = svc.ListForUser(ctx, "mgr-2", false)
	require.NoError(t, err)
	require.Len(t, open, 1, "superseded tasks drop out of the open list")
	assert.Equal(t, second.ID, open[0].RequestID)

	all, err := svc.ListForUser(ctx, "mgr-2", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forRequest, err := svc.ListForRequest(ctx, domain.KindCashRequest, first.ID)
	require.NoError(t, err)
	assert.Len(t, forRequest, 3, "two manager tasks and one finance task")
}

func TestInboxService_StoredNotifications(t *testing.T) {
	database := testutil.NewTestDB(t)
	h := newEngineHarnessOn(t, database, nil, WithSink(notify.NewStoreSink(database)))
	ctx := context.Background()
	inbox := NewInboxService(repository.NewSQLiteNotificationRepo(database))

	cr := h.cash(t)
	_, err := h.engine.StartWorkflow(ctx, domain.KindCashRequest, cr.ID)
	require.NoError(t, err)

	list, err := inbox.List(ctx, "mgr-1", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotifyTaskAssigned, list[0].Kind)
	assert.Equal(t, cr.ID, list[0].RelatedID)
	assert.Nil(t, list[0].ReadAt)

	require.NoError(t, inbox.MarkRead(ctx, list[0].ID))
	require.NoError(t, inbox.MarkRead(ctx, list[0].ID), "marking read twice is fine")

	unread, err := inbox.List(ctx, "mgr-1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := inbox.List(ctx, "mgr-1", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].ReadAt)

	err = inbox.MarkRead(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = h.decide(domain.KindCashRequest, cr.ID, "mgr-1", domain.ActionReject)
	require.NoError(t, err)
	requester, err := inbox.List(ctx, "req-1", false)
	require.NoError(t, err)
	require.Len(t, requester, 1)
	assert.Equal(t, domain.NotifyRequestRejected, requester[0].Kind)
	assert.Equal(t, "Manager rejected", mustStatusLabel(t, requester[0].Message))
}

func mustStatusLabel(t *testing.T, msg string) string {
	t.Helper()
	label, _, ok := strings.Cut(msg, ":")
	require.True(t, ok, "message %q has no status prefix", msg)
	return label
}
