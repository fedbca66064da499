package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotification(userID string, kind domain.NotificationKind, created time.Time) *domain.Notification {
	return &domain.Notification{
		ID: uuid.New().String(),
		NotificationIntent: domain.NotificationIntent{
			Kind:        kind,
			UserID:      userID,
			Title:       string(kind),
			RelatedKind: domain.KindInvestment,
			RelatedID:   "req-1",
		},
		CreatedAt: created,
	}
}

func TestNotificationRepo_InboxNewestFirst(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteNotificationRepo(database)
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	older := newTestNotification("alice", domain.NotifyTaskAssigned, base)
	newer := newTestNotification("alice", domain.NotifyRequestApproved, base.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, newTestNotification("bob", domain.NotifyTaskAssigned, base)))

	inbox, err := repo.ListByUser(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, newer.ID, inbox[0].ID)
	assert.Equal(t, domain.KindInvestment, inbox[0].RelatedKind)
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteNotificationRepo(database)

	n := newTestNotification("alice", domain.NotifyChangesRequested, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, n))
	require.NoError(t, repo.MarkRead(ctx, n.ID, time.Now().UTC()))
	require.NoError(t, repo.MarkRead(ctx, n.ID, time.Now().UTC()), "marking twice is harmless")

	unread, err := repo.ListByUser(ctx, "alice", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	assert.ErrorIs(t, repo.MarkRead(ctx, "missing", time.Now().UTC()), ErrNotFound)
}
