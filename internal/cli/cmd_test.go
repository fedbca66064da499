package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/tollgate/internal/app"
	"github.com/alexanderramin/tollgate/internal/config"
	"github.com/alexanderramin/tollgate/internal/directory"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires a full App backed by an in-memory DB with the inbox sink.
func testApp(t *testing.T) (*App, *testutil.Clock) {
	t.Helper()
	cfg := config.Default()
	cfg.Roles = map[string]string{
		"mgr-1": "manager",
		"fin-1": "finance",
	}
	clock := testutil.NewClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(context.Background(), &cfg, testutil.NewTestDB(t), logger, app.WithClock(clock.Now))
	require.NoError(t, err)

	c := FromApp(a, filepath.Join(t.TempDir(), "config.toml"))
	c.Now = clock.Now
	return c, clock
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	return out
}

func createSubmittedCash(t *testing.T, app *App) {
	t.Helper()
	out := mustExecute(t, app, "request", "create",
		"--kind", "cash", "--requester", "req-1", "--amount", "310", "--purpose", "Client dinner", "--submit")
	require.Contains(t, out, "CR-0001")
}

func TestRequestCreate_SubmitOpensFirstStage(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "request", "create",
		"--kind", "cash", "--requester", "req-1", "--amount", "310", "--purpose", "Client dinner", "--submit")

	assert.Contains(t, out, "Created cash request CR-0001")
	assert.Contains(t, out, "stage 1 (cycle 1) open for manager")
	assert.Contains(t, out, "mgr-1")
	assert.Contains(t, out, "due in 24h")
}

func TestRequestCreate_DraftDoesNotStart(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "request", "create",
		"--kind", "investment", "--requester", "req-1", "--amount", "250000", "--project", "Line 3 retrofit")
	assert.Contains(t, out, "Created investment request INV-0001")
	assert.NotContains(t, out, "open for")

	out = mustExecute(t, app, "request", "list", "--status", "draft")
	assert.Contains(t, out, "INV-0001")
	assert.Contains(t, out, "Draft")
}

func TestRequestCreate_Validation(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "request", "create", "--kind", "cash", "--requester", "req-1", "--amount", "abc", "--purpose", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = executeCmd(t, app, "request", "create", "--kind", "loan", "--requester", "req-1", "--amount", "10")
	assert.ErrorContains(t, err, "unknown request kind")

	_, err = executeCmd(t, app, "request", "create", "--kind", "investment", "--requester", "req-1", "--amount", "10")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "investment needs a project name")
}

func TestWorkflowDecide_ApprovesThroughFinalStage(t *testing.T) {
	app, _ := testApp(t)
	createSubmittedCash(t, app)

	out := mustExecute(t, app, "workflow", "decide", "CR-0001", "--actor", "mgr-1", "--action", "approve")
	assert.Contains(t, out, "Manager approved")
	assert.Contains(t, out, "stage 2 (cycle 1) open for finance")

	out = mustExecute(t, app, "workflow", "decide", "CR-0001", "--actor", "fin-1", "--action", "approve", "--comments", "ok")
	assert.Contains(t, out, "✔ approved")

	out = mustExecute(t, app, "workflow", "history", "CR-0001")
	assert.Contains(t, out, "Cycle 1")
	assert.Contains(t, out, "Stage 1  Manager approved")
	assert.Contains(t, out, "Stage 2  Finance approved")

	out = mustExecute(t, app, "request", "show", "CR-0001")
	assert.Contains(t, out, "Client dinner")
	assert.Contains(t, out, "2/2")
}

func TestWorkflowDecide_Guards(t *testing.T) {
	app, _ := testApp(t)
	createSubmittedCash(t, app)

	_, err := executeCmd(t, app, "workflow", "decide", "CR-0001", "--actor", "mgr-1")
	assert.ErrorIs(t, err, domain.ErrInvalidAction, "non-interactive decide needs --action")

	_, err = executeCmd(t, app, "workflow", "decide", "CR-0001", "--actor", "fin-1", "--action", "approve")
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	_, err = executeCmd(t, app, "workflow", "decide", "CR-0001", "--actor", "mgr-1", "--action", "approve", "--stage", "2")
	assert.ErrorIs(t, err, domain.ErrNoPendingApproval)

	_, err = executeCmd(t, app, "workflow", "decide", "CR-0099", "--actor", "mgr-1", "--action", "approve")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	_, err = executeCmd(t, app, "workflow", "start", "CR-0001")
	assert.ErrorIs(t, err, domain.ErrAlreadyInProgress)
}

func TestWorkflowResubmit_StartsNewCycle(t *testing.T) {
	app, _ := testApp(t)
	createSubmittedCash(t, app)

	out := mustExecute(t, app, "workflow", "decide", "CR-0001", "--actor", "mgr-1", "--action", "reject", "--comments", "no receipt")
	assert.Contains(t, out, "Manager rejected")

	_, err := executeCmd(t, app, "workflow", "resubmit", "CR-0001", "--requester", "someone-else")
	assert.ErrorIs(t, err, domain.ErrNotRequester)

	out = mustExecute(t, app, "workflow", "resubmit", "CR-0001", "--requester", "req-1")
	assert.Contains(t, out, "stage 1 (cycle 2) open for manager")

	out = mustExecute(t, app, "workflow", "history", "CR-0001")
	assert.Contains(t, out, "Cycle 1")
	assert.Contains(t, out, "Cycle 2")
	assert.Contains(t, out, "no receipt")
}

func TestWorkflowStart_Draft(t *testing.T) {
	app, _ := testApp(t)
	mustExecute(t, app, "request", "create", "--kind", "cash", "--requester", "req-1", "--amount", "80", "--purpose", "Taxi")

	out := mustExecute(t, app, "workflow", "start", "cr-0001")
	assert.Contains(t, out, "CR-0001 stage 1 (cycle 1) open for manager")
}

func TestWorkflowStages(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "workflow", "stages")
	assert.Contains(t, out, "INVESTMENT")
	assert.Contains(t, out, "committee_member")
	assert.Contains(t, out, "CASH_REQUEST")

	out = mustExecute(t, app, "workflow", "stages", "cash")
	assert.NotContains(t, out, "committee_member")
	assert.Contains(t, out, "12h")
}

func TestTaskListAndSweep(t *testing.T) {
	app, clock := testApp(t)
	createSubmittedCash(t, app)

	out := mustExecute(t, app, "task", "list", "mgr-1")
	assert.Contains(t, out, "CR-0001")
	assert.Contains(t, out, "Pending")

	out = mustExecute(t, app, "task", "sweep")
	assert.Contains(t, out, "none newly overdue")

	clock.Advance(25 * time.Hour)
	out = mustExecute(t, app, "task", "sweep")
	assert.Contains(t, out, "1 task(s) newly overdue")

	out = mustExecute(t, app, "task", "list", "mgr-1")
	assert.Contains(t, out, "Overdue")
	assert.Contains(t, out, "1h late")

	out = mustExecute(t, app, "task", "list", "fin-1")
	assert.Contains(t, out, "No tasks for fin-1.")
}

func TestRoleCommands(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "role", "assign", "com-9", "Committee_Member")
	assert.Contains(t, out, "com-9 is now committee_member")

	out = mustExecute(t, app, "role", "list")
	assert.Contains(t, out, "com-9")
	assert.Contains(t, out, "mgr-1")

	mustExecute(t, app, "role", "remove", "com-9")
	out = mustExecute(t, app, "role", "list")
	assert.NotContains(t, out, "com-9")

	_, err := executeCmd(t, app, "role", "remove", "nobody")
	assert.ErrorIs(t, err, directory.ErrUnknownUser)
}

func TestInbox_RequesterAndBroadcast(t *testing.T) {
	app, _ := testApp(t)

	// Nobody holds committee_member, so stage 2 raises an operator alert.
	mustExecute(t, app, "request", "create", "--kind", "investment", "--requester", "req-1",
		"--amount", "250000", "--project", "Line 3 retrofit", "--submit")
	out := mustExecute(t, app, "workflow", "decide", "INV-0001", "--actor", "mgr-1", "--action", "approve")
	assert.Contains(t, out, "no eligible approvers")

	out = mustExecute(t, app, "inbox", "--broadcast")
	assert.Contains(t, out, "INV-0001 stage 2 has no approvers")

	mustExecute(t, app, "request", "create", "--kind", "cash", "--requester", "req-1",
		"--amount", "40", "--purpose", "Parking", "--submit")
	mustExecute(t, app, "workflow", "decide", "CR-0001", "--actor", "mgr-1", "--action", "changes_requested", "--comments", "attach receipt")

	out = mustExecute(t, app, "inbox", "req-1", "--unread")
	assert.Contains(t, out, "CR-0001 needs changes")
	assert.Contains(t, out, "attach receipt")

	notes, err := app.Inbox.List(context.Background(), "req-1", true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	mustExecute(t, app, "inbox", "read", notes[0].ID)

	out = mustExecute(t, app, "inbox", "req-1", "--unread")
	assert.Contains(t, out, "Inbox for req-1 is empty.")

	_, err = executeCmd(t, app, "inbox")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "config", "init")
	assert.Contains(t, out, "Wrote")
	data, err := os.ReadFile(app.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[database]")

	_, err = executeCmd(t, app, "config", "init")
	assert.ErrorContains(t, err, "already exists")
	mustExecute(t, app, "config", "init", "--force")

	out = mustExecute(t, app, "config", "show")
	assert.Contains(t, out, "[workflow]")
	assert.Contains(t, out, "eligibility_check = true")
}

func TestServe_Unavailable(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "serve")
	assert.ErrorContains(t, err, "not available")
}
