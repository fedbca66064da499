// Package directory resolves users to roles and roles to users.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

// ErrUnknownUser is returned by RoleOf for users without a role.
var ErrUnknownUser = errors.New("unknown user")

// Directory is the role lookup the engine and fanout depend on.
type Directory interface {
	UsersInRole(ctx context.Context, role domain.Role) ([]string, error)
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}

// TxBinder is implemented by directories that can be rebound to a
// transaction, so lookups inside a unit of work see its writes and do not
// need a second connection.
type TxBinder interface {
	WithTx(conn db.DBTX) Directory
}

// Bind returns dir rebound to conn when it supports it, and dir otherwise.
func Bind(dir Directory, conn db.DBTX) Directory {
	if b, ok := dir.(TxBinder); ok {
		return b.WithTx(conn)
	}
	return dir
}

// Store is a Directory backed by the role_assignments table.
type Store struct {
	roles repository.RoleRepo
}

func NewStore(conn db.DBTX) *Store {
	return &Store{roles: repository.NewSQLiteRoleRepo(conn)}
}

func (s *Store) WithTx(conn db.DBTX) Directory {
	return NewStore(conn)
}

func (s *Store) UsersInRole(ctx context.Context, role domain.Role) ([]string, error) {
	return s.roles.ListByRole(ctx, role)
}

func (s *Store) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	role, err := s.roles.RoleOf(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return role, err
}

func (s *Store) Assign(ctx context.Context, userID string, role domain.Role) error {
	return s.roles.Assign(ctx, userID, role)
}

func (s *Store) Remove(ctx context.Context, userID string) error {
	err := s.roles.Remove(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return err
}

func (s *Store) List(ctx context.Context) ([]domain.RoleAssignment, error) {
	return s.roles.List(ctx)
}

// Seed assigns every user in assignments. Existing assignments for other
// users are kept.
func (s *Store) Seed(ctx context.Context, assignments map[string]domain.Role) error {
	users := make([]string, 0, len(assignments))
	for u := range assignments {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		if err := s.roles.Assign(ctx, u, assignments[u]); err != nil {
			return err
		}
	}
	return nil
}

// Static is an in-memory Directory, typically built from configuration.
type Static struct {
	mu    sync.RWMutex
	roles map[string]domain.Role
}

func NewStatic(assignments map[string]domain.Role) *Static {
	roles := make(map[string]domain.Role, len(assignments))
	for u, r := range assignments {
		roles[u] = r
	}
	return &Static{roles: roles}
}

func (s *Static) UsersInRole(_ context.Context, role domain.Role) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []string
	for u, r := range s.roles {
		if r == role {
			users = append(users, u)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (s *Static) RoleOf(_ context.Context, userID string) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[userID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return role, nil
}

func (s *Static) Assign(userID string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = role
}
