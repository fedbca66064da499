package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

type requestService struct {
	conn   db.DBTX
	uow    db.UnitOfWork
	engine WorkflowEngine
	now    func() time.Time
}

// NewRequestService stores requests through uow and reads them through conn.
// Submitted requests are handed to engine once stored.
func NewRequestService(conn db.DBTX, uow db.UnitOfWork, engine WorkflowEngine) RequestService {
	return &requestService{
		conn:   conn,
		uow:    uow,
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *requestService) CreateInvestment(ctx context.Context, r *domain.InvestmentRequest, submit bool) (*StageOpened, error) {
	r.Kind = domain.KindInvestment
	s.prepare(&r.Request, submit)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.assignCode(ctx, tx, &r.Request); err != nil {
			return err
		}
		return repository.NewSQLiteInvestmentRepo(tx).Create(ctx, r)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return s.submit(ctx, &r.Request, submit)
}

func (s *requestService) CreateCash(ctx context.Context, r *domain.CashRequest, submit bool) (*StageOpened, error) {
	r.Kind = domain.KindCashRequest
	s.prepare(&r.Request, submit)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.assignCode(ctx, tx, &r.Request); err != nil {
			return err
		}
		return repository.NewSQLiteCashRequestRepo(tx).Create(ctx, r)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return s.submit(ctx, &r.Request, submit)
}

func (s *requestService) prepare(r *domain.Request, submit bool) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.RequesterID = strings.TrimSpace(r.RequesterID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = "USD"
	}
	r.Status = domain.StatusDraft
	if submit {
		r.Status = domain.StatusNew
	}
	now := s.now()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// assignCode allocates the next per-kind sequence number inside tx, e.g.
// INV-0042. Codes are never reused even when the insert later rolls back.
func (s *requestService) assignCode(ctx context.Context, tx db.DBTX, r *domain.Request) error {
	n, err := repository.NewSQLiteSequenceRepo(tx).Next(ctx, r.Kind)
	if err != nil {
		return err
	}
	r.Code = fmt.Sprintf("%s-%04d", r.Kind.CodePrefix(), n)
	return nil
}

// submit starts the workflow for a submitted request. A failed start leaves
// the request stored as New so the start can be retried.
func (s *requestService) submit(ctx context.Context, r *domain.Request, submit bool) (*StageOpened, error) {
	if !submit {
		return nil, nil
	}
	opened, err := s.engine.StartWorkflow(ctx, r.Kind, r.ID)
	if err != nil {
		return nil, fmt.Errorf("starting workflow for %s: %w", r.DisplayCode(), err)
	}
	return opened, nil
}

func (s *requestService) Get(ctx context.Context, kind domain.RequestKind, id string) (*domain.Request, error) {
	repo, err := repository.NewSQLiteRequestRepo(s.conn, kind)
	if err != nil {
		return nil, err
	}
	r, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(notFoundAs(err, domain.ErrRequestNotFound, "%s %s", kind, id))
	}
	return r, nil
}

func (s *requestService) GetByCode(ctx context.Context, code string) (*domain.Request, error) {
	kind, err := domain.KindFromCode(code)
	if err != nil {
		return nil, err
	}
	repo, err := repository.NewSQLiteRequestRepo(s.conn, kind)
	if err != nil {
		return nil, err
	}
	r, err := repo.GetByCode(ctx, code)
	if err != nil {
		return nil, storageErr(notFoundAs(err, domain.ErrRequestNotFound, "%s", code))
	}
	return r, nil
}

func (s *requestService) GetInvestment(ctx context.Context, id string) (*domain.InvestmentRequest, error) {
	r, err := repository.NewSQLiteInvestmentRepo(s.conn).GetInvestment(ctx, id)
	if err != nil {
		return nil, storageErr(notFoundAs(err, domain.ErrRequestNotFound, "investment %s", id))
	}
	return r, nil
}

func (s *requestService) GetCash(ctx context.Context, id string) (*domain.CashRequest, error) {
	r, err := repository.NewSQLiteCashRequestRepo(s.conn).GetCashRequest(ctx, id)
	if err != nil {
		return nil, storageErr(notFoundAs(err, domain.ErrRequestNotFound, "cash request %s", id))
	}
	return r, nil
}

// List returns the requests of one kind, or of every kind when kind is empty.
func (s *requestService) List(ctx context.Context, kind domain.RequestKind, filter repository.RequestFilter) ([]*domain.Request, error) {
	kinds := domain.KnownRequestKinds
	if kind != "" {
		kinds = []domain.RequestKind{kind}
	}
	var out []*domain.Request
	for _, k := range kinds {
		repo, err := repository.NewSQLiteRequestRepo(s.conn, k)
		if err != nil {
			return nil, err
		}
		rs, err := repo.List(ctx, filter)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, rs...)
	}
	return out, nil
}
