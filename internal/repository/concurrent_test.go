package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// File-backed so that every pooled connection sees the same database.
func TestConcurrentSequenceAllocation_Unique(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteSequenceRepo(database)

	const workers = 8
	const perWorker = 10

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int]bool{}
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := repo.Next(ctx, domain.KindInvestment)
				if err != nil {
					t.Errorf("allocating: %v", err)
					return
				}
				mu.Lock()
				if seen[n] {
					t.Errorf("sequence %d allocated twice", n)
				}
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestConcurrentPendingInsert_OnlyOneWins(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteApprovalRepo(database)

	const racers = 6
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		dupes  int
		others []error
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := testutil.NewTestApprovalRecord(domain.KindCashRequest, "req-race", 1, domain.RoleManager)
			err := repo.Create(ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrDuplicate):
				dupes++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, dupes)
}
