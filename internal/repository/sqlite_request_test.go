package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvestmentRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteInvestmentRepo(database)

	inv := testutil.NewTestInvestment("alice", "New CNC line", testutil.WithAmount("125000.50"))
	inv.Description = "Replace the 2009 mill"
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetInvestment(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Code, got.Code)
	assert.Equal(t, domain.KindInvestment, got.Kind)
	assert.Equal(t, "alice", got.RequesterID)
	assert.True(t, got.Amount.Equal(inv.Amount), "amount %s", got.Amount)
	assert.Equal(t, "New CNC line", got.ProjectName)
	assert.Equal(t, "Replace the 2009 mill", got.Description)
	assert.Equal(t, 12, got.HorizonMonths)
	assert.Equal(t, domain.StatusNew, got.Status)

	base, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, base.ID)
	assert.Equal(t, domain.KindInvestment, base.Kind)
}

func TestCashRequestRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteCashRequestRepo(database)

	needed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cr := testutil.NewTestCashRequest("bob", "Conference travel")
	cr.NeededBy = &needed
	require.NoError(t, repo.Create(ctx, cr))

	got, err := repo.GetCashRequest(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Conference travel", got.Purpose)
	assert.Equal(t, "Acme Supplies", got.Payee)
	require.NotNil(t, got.NeededBy)
	assert.True(t, got.NeededBy.Equal(needed))
	assert.Equal(t, domain.KindCashRequest, got.Kind)
}

func TestRequestRepo_GetByID_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)

	_, err := NewSQLiteInvestmentRepo(database).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewSQLiteCashRequestRepo(database).GetCashRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestRepo_DuplicateCode(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteInvestmentRepo(database)

	require.NoError(t, repo.Create(ctx, testutil.NewTestInvestment("alice", "A", testutil.WithCode("INV-0001"))))
	err := repo.Create(ctx, testutil.NewTestInvestment("alice", "B", testutil.WithCode("INV-0001")))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRequestRepo_GetByCode_IsCaseInsensitive(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteCashRequestRepo(database)

	cr := testutil.NewTestCashRequest("bob", "Petty cash", testutil.WithCode("CR-0042"))
	require.NoError(t, repo.Create(ctx, cr))

	got, err := repo.GetByCode(ctx, " cr-0042 ")
	require.NoError(t, err)
	assert.Equal(t, cr.ID, got.ID)
}

func TestRequestRepo_UpdateStatus_StoresStructuredForm(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteInvestmentRepo(database)

	inv := testutil.NewTestInvestment("alice", "Roof")
	require.NoError(t, repo.Create(ctx, inv))

	require.NoError(t, repo.UpdateStatus(ctx, inv.ID, domain.RejectedBy(domain.RoleCommitteeMember)))

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejected, got.Status.Outcome)
	assert.Equal(t, domain.RoleCommitteeMember, got.Status.Role)
	assert.Equal(t, "Committee rejected", got.Status.String())

	err = repo.UpdateStatus(ctx, "missing", domain.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestRepo_UpdateStatusIf(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteCashRequestRepo(database)

	cr := testutil.NewTestCashRequest("bob", "Laptop", testutil.WithStatus(domain.RejectedBy(domain.RoleManager)))
	require.NoError(t, repo.Create(ctx, cr))

	changed, err := repo.UpdateStatusIf(ctx, cr.ID, domain.StatusModified, domain.OutcomeRejected, domain.OutcomeChangesRequested)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatusIf(ctx, cr.ID, domain.StatusModified, domain.OutcomeRejected)
	require.NoError(t, err)
	assert.False(t, changed, "status is no longer rejected")

	changed, err = repo.UpdateStatusIf(ctx, cr.ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.False(t, changed, "no source outcomes never matches")
}

func TestRequestRepo_ListFilters(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteInvestmentRepo(database)

	require.NoError(t, repo.Create(ctx, testutil.NewTestInvestment("alice", "A")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestInvestment("alice", "B", testutil.WithStatus(domain.StatusApproved))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestInvestment("carol", "C")))

	all, err := repo.List(ctx, RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.List(ctx, RequestFilter{RequesterID: "alice"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	approved, err := repo.List(ctx, RequestFilter{Outcomes: []domain.StatusOutcome{domain.OutcomeApproved}})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "alice", approved[0].RequesterID)

	limited, err := repo.List(ctx, RequestFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNewSQLiteRequestRepo_ByKind(t *testing.T) {
	database := testutil.NewTestDB(t)

	repo, err := NewSQLiteRequestRepo(database, domain.KindCashRequest)
	require.NoError(t, err)
	assert.Equal(t, domain.KindCashRequest, repo.Kind())

	_, err = NewSQLiteRequestRepo(database, domain.RequestKind("purchase_order"))
	assert.ErrorIs(t, err, domain.ErrUnknownRequestKind)
}
