// Package workflow holds the per-kind approval stage tables. A Registry is
// built once at startup and never mutated; lookups return copies.
package workflow

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/tollgate/internal/domain"
)

// Table maps a request kind to its ordered stage list.
type Table map[domain.RequestKind][]domain.WorkflowStageConfig

// DefaultTable is the built-in stage table.
func DefaultTable() Table {
	return Table{
		domain.KindInvestment: {
			{StageNumber: 1, RequiredRole: domain.RoleManager, SLAHours: 48},
			{StageNumber: 2, RequiredRole: domain.RoleCommitteeMember, SLAHours: 72},
			{StageNumber: 3, RequiredRole: domain.RoleFinance, SLAHours: 24},
		},
		domain.KindCashRequest: {
			{StageNumber: 1, RequiredRole: domain.RoleManager, SLAHours: 24},
			{StageNumber: 2, RequiredRole: domain.RoleFinance, SLAHours: 12},
		},
	}
}

type Registry struct {
	stages map[domain.RequestKind][]domain.WorkflowStageConfig
}

// NewRegistry validates and freezes a stage table. Every kind must be a
// known request kind with stages numbered 1..n, a required role and a
// positive SLA.
func NewRegistry(table Table) (*Registry, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: no request kinds configured", domain.ErrInvalidStageTable)
	}
	frozen := make(map[domain.RequestKind][]domain.WorkflowStageConfig, len(table))
	for kind, stages := range table {
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: %w: %q", domain.ErrInvalidStageTable, domain.ErrUnknownRequestKind, kind)
		}
		if len(stages) == 0 {
			return nil, fmt.Errorf("%w: %s has no stages", domain.ErrInvalidStageTable, kind)
		}
		sorted := make([]domain.WorkflowStageConfig, len(stages))
		copy(sorted, stages)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StageNumber < sorted[j].StageNumber })
		for i, s := range sorted {
			if s.StageNumber != i+1 {
				return nil, fmt.Errorf("%w: %s stages must be numbered 1..%d without gaps (found %d at position %d)",
					domain.ErrInvalidStageTable, kind, len(sorted), s.StageNumber, i+1)
			}
			if s.RequiredRole == "" {
				return nil, fmt.Errorf("%w: %s stage %d has no required role", domain.ErrInvalidStageTable, kind, s.StageNumber)
			}
			if s.SLAHours <= 0 {
				return nil, fmt.Errorf("%w: %s stage %d sla_hours must be positive", domain.ErrInvalidStageTable, kind, s.StageNumber)
			}
		}
		frozen[kind] = sorted
	}
	return &Registry{stages: frozen}, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry built from DefaultTable.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(DefaultTable())
		if err != nil {
			panic(fmt.Sprintf("workflow: default stage table is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Stages returns a copy of the ordered stage list for kind.
func (r *Registry) Stages(kind domain.RequestKind) ([]domain.WorkflowStageConfig, error) {
	stages, ok := r.stages[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRequestKind, kind)
	}
	out := make([]domain.WorkflowStageConfig, len(stages))
	copy(out, stages)
	return out, nil
}

// Stage returns the config for stage n (1-based).
func (r *Registry) Stage(kind domain.RequestKind, n int) (domain.WorkflowStageConfig, error) {
	stages, ok := r.stages[kind]
	if !ok {
		return domain.WorkflowStageConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownRequestKind, kind)
	}
	if n < 1 || n > len(stages) {
		return domain.WorkflowStageConfig{}, fmt.Errorf("%w: %s has no stage %d", domain.ErrUnknownStage, kind, n)
	}
	return stages[n-1], nil
}

// Next returns the stage following n. ok is false when n is the last stage.
func (r *Registry) Next(kind domain.RequestKind, n int) (next domain.WorkflowStageConfig, ok bool, err error) {
	if _, err := r.Stage(kind, n); err != nil {
		return domain.WorkflowStageConfig{}, false, err
	}
	stages := r.stages[kind]
	if n == len(stages) {
		return domain.WorkflowStageConfig{}, false, nil
	}
	return stages[n], true, nil
}

// StageCount returns the number of configured stages for kind.
func (r *Registry) StageCount(kind domain.RequestKind) (int, error) {
	stages, ok := r.stages[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownRequestKind, kind)
	}
	return len(stages), nil
}

// Kinds returns the configured request kinds in sorted order.
func (r *Registry) Kinds() []domain.RequestKind {
	kinds := make([]domain.RequestKind, 0, len(r.stages))
	for k := range r.stages {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
