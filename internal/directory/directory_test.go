package directory

import (
	"context"
	"testing"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SeedAndResolve(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	dir := NewStore(database)

	require.NoError(t, dir.Seed(ctx, map[string]domain.Role{
		"mgr-2": domain.RoleManager,
		"mgr-1": domain.RoleManager,
		"fin-1": domain.RoleFinance,
	}))

	managers, err := dir.UsersInRole(ctx, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, []string{"mgr-1", "mgr-2"}, managers)

	role, err := dir.RoleOf(ctx, "fin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFinance, role)

	_, err = dir.RoleOf(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUnknownUser)

	none, err := dir.UsersInRole(ctx, domain.RoleCommitteeMember)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Remove(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	dir := NewStore(database)

	require.NoError(t, dir.Assign(ctx, "ann", domain.RoleAdmin))
	require.NoError(t, dir.Remove(ctx, "ann"))
	assert.ErrorIs(t, dir.Remove(ctx, "ann"), ErrUnknownUser)

	all, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	src := map[string]domain.Role{"b": domain.RoleFinance, "a": domain.RoleFinance}
	dir := NewStatic(src)
	src["c"] = domain.RoleFinance

	users, err := dir.UsersInRole(ctx, domain.RoleFinance)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, users, "the source map is copied")

	dir.Assign("c", domain.RoleManager)
	role, err := dir.RoleOf(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, role)

	_, err = dir.RoleOf(ctx, "zed")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestBind(t *testing.T) {
	database := testutil.NewTestDB(t)
	static := NewStatic(nil)

	assert.Same(t, static, Bind(static, database), "static directories are returned as is")
	assert.IsType(t, &Store{}, Bind(NewStore(database), database))
}
