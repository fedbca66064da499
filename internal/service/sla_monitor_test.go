package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/testutil"
)

func TestSLAMonitor_SweepMarksPastDueTasks(t *testing.T) {
	h := newEngineHarness(t, nil)
	ctx := context.Background()
	cr := h.cash(t)
	_, err := h.engine.StartWorkflow(ctx, domain.KindCashRequest, cr.ID)
	require.NoError(t, err)

	sink := &testutil.RecordingSink{}
	monitor := NewSLAMonitor(h.tasks, WithSLAClock(h.clock.Now), WithSLASink(sink))

	h.clock.Advance(23 * time.Hour)
	res, err := monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Checked)
	assert.Empty(t, res.Overdue)

	h.clock.Advance(2 * time.Hour)
	res, err = monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	require.Len(t, res.Overdue, 2)
	for _, task := range res.Overdue {
		assert.Equal(t, domain.TaskOverdue, task.Status)
	}
	assert.Equal(t, h.clock.Now(), res.At)

	overdue := sink.OfKind(domain.NotifyTaskOverdue)
	require.Len(t, overdue, 2)
	assert.ElementsMatch(t, []string{"mgr-1", "mgr-2"}, []string{overdue[0].UserID, overdue[1].UserID})

	pending, err := h.approvals.GetPending(ctx, domain.KindCashRequest, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Stage, "the sweep never touches approval records")
	assert.Equal(t, domain.StatusNew, h.request(t, domain.KindCashRequest, cr.ID).Status)

	res, err = monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Overdue, "overdue tasks are flipped once")
	assert.Len(t, sink.OfKind(domain.NotifyTaskOverdue), 2)
}

func TestSLAMonitor_SkipsDecidedTasks(t *testing.T) {
	h := newEngineHarness(t, nil)
	ctx := context.Background()
	cr := h.cash(t)
	_, err := h.engine.StartWorkflow(ctx, domain.KindCashRequest, cr.ID)
	require.NoError(t, err)
	_, err = h.decide(domain.KindCashRequest, cr.ID, "mgr-1", domain.ActionApprove)
	require.NoError(t, err)

	monitor := NewSLAMonitor(h.tasks, WithSLAClock(h.clock.Now))
	h.clock.Advance(13 * time.Hour)
	res, err := monitor.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, res.Overdue, 1, "only the finance task is still pending")
	assert.Equal(t, "fin-1", res.Overdue[0].AssigneeID)
	assert.Equal(t, 2, res.Overdue[0].Stage)
}

func TestSLAMonitor_SinkFailureIsLogged(t *testing.T) {
	h := newEngineHarness(t, nil)
	ctx := context.Background()
	inv := h.investment(t)
	_, err := h.engine.StartWorkflow(ctx, domain.KindInvestment, inv.ID)
	require.NoError(t, err)

	sink := &testutil.RecordingSink{Err: errors.New("offline")}
	monitor := NewSLAMonitor(h.tasks, WithSLAClock(h.clock.Now), WithSLASink(sink))
	h.clock.Advance(49 * time.Hour)

	res, err := monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Overdue, 2)
}

func TestSLAMonitor_StartStops(t *testing.T) {
	h := newEngineHarness(t, nil)
	ctx := context.Background()
	cr := h.cash(t)
	_, err := h.engine.StartWorkflow(ctx, domain.KindCashRequest, cr.ID)
	require.NoError(t, err)

	sink := &testutil.RecordingSink{}
	h.clock.Advance(25 * time.Hour)
	monitor := NewSLAMonitor(h.tasks, WithSLAClock(h.clock.Now), WithSLASink(sink))

	stop := monitor.Start(ctx, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(sink.OfKind(domain.NotifyTaskOverdue)) == 2
	}, 2*time.Second, 10*time.Millisecond)
	stop()
}
