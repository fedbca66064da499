package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
)

const requestBaseColumns = `id, code, requester_id, amount, currency, status_outcome, status_role, created_at, updated_at`

// sqliteRequestView implements the kind-independent RequestRepo over one
// request table. The concrete repos embed it.
type sqliteRequestView struct {
	db    db.DBTX
	kind  domain.RequestKind
	table string
}

// NewSQLiteRequestRepo returns the request view for kind.
func NewSQLiteRequestRepo(conn db.DBTX, kind domain.RequestKind) (RequestRepo, error) {
	switch kind {
	case domain.KindInvestment:
		return NewSQLiteInvestmentRepo(conn), nil
	case domain.KindCashRequest:
		return NewSQLiteCashRequestRepo(conn), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRequestKind, kind)
}

func (v *sqliteRequestView) Kind() domain.RequestKind { return v.kind }

func (v *sqliteRequestView) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := `SELECT ` + requestBaseColumns + ` FROM ` + v.table + ` WHERE id = ?`
	return v.scanRequest(v.db.QueryRowContext(ctx, query, id))
}

func (v *sqliteRequestView) GetByCode(ctx context.Context, code string) (*domain.Request, error) {
	query := `SELECT ` + requestBaseColumns + ` FROM ` + v.table + ` WHERE code = ?`
	return v.scanRequest(v.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))))
}

func (v *sqliteRequestView) List(ctx context.Context, filter RequestFilter) ([]*domain.Request, error) {
	var (
		where []string
		args  []any
	)
	if filter.RequesterID != "" {
		where = append(where, "requester_id = ?")
		args = append(args, filter.RequesterID)
	}
	if len(filter.Outcomes) > 0 {
		where = append(where, "status_outcome IN ("+placeholders(len(filter.Outcomes))+")")
		for _, o := range filter.Outcomes {
			args = append(args, string(o))
		}
	}

	query := `SELECT ` + requestBaseColumns + ` FROM ` + v.table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, code"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", v.table, err)
	}
	defer rows.Close()

	var out []*domain.Request
	for rows.Next() {
		r, err := v.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", v.table, err)
	}
	return out, nil
}

func (v *sqliteRequestView) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	query := `UPDATE ` + v.table + ` SET status_outcome = ?, status_role = ?, updated_at = ? WHERE id = ?`
	res, err := v.db.ExecContext(ctx, query, string(status.Outcome), string(status.Role), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating %s status: %w", v.kind, err)
	}
	n, err := checkRowsAffected(res, "request status")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", v.kind, id, ErrNotFound)
	}
	return nil
}

func (v *sqliteRequestView) UpdateStatusIf(ctx context.Context, id string, status domain.RequestStatus, from ...domain.StatusOutcome) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	args := []any{string(status.Outcome), string(status.Role), nowUTC(), id}
	for _, o := range from {
		args = append(args, string(o))
	}
	query := `UPDATE ` + v.table + ` SET status_outcome = ?, status_role = ?, updated_at = ?
		WHERE id = ? AND status_outcome IN (` + placeholders(len(from)) + `)`
	res, err := v.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("conditionally updating %s status: %w", v.kind, err)
	}
	n, err := checkRowsAffected(res, "request status")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (v *sqliteRequestView) scanRequest(row rowScanner, extra ...any) (*domain.Request, error) {
	var r domain.Request
	var amount, outcome, role, created, updated string
	dest := append([]any{&r.ID, &r.Code, &r.RequesterID, &amount, &r.Currency, &outcome, &role, &created, &updated}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", v.kind, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning %s: %w", v.kind, err)
	}
	return v.populateRequest(&r, amount, outcome, role, created, updated)
}

func (v *sqliteRequestView) populateRequest(r *domain.Request, amount, outcome, role, created, updated string) (*domain.Request, error) {
	var err error
	r.Kind = v.kind
	if r.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parsing amount of %s %s: %w", v.kind, r.ID, err)
	}
	r.Status = domain.RequestStatus{Outcome: domain.StatusOutcome(outcome), Role: domain.Role(role)}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return r, nil
}

func (v *sqliteRequestView) insertArgs(r *domain.Request) []any {
	return []any{
		r.ID,
		r.Code,
		r.RequesterID,
		r.Amount.String(),
		r.Currency,
		string(r.Status.Outcome),
		string(r.Status.Role),
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}
}

// SQLiteInvestmentRepo stores investment requests.
type SQLiteInvestmentRepo struct {
	sqliteRequestView
}

func NewSQLiteInvestmentRepo(conn db.DBTX) *SQLiteInvestmentRepo {
	return &SQLiteInvestmentRepo{sqliteRequestView{db: conn, kind: domain.KindInvestment, table: "investment_requests"}}
}

func (r *SQLiteInvestmentRepo) Create(ctx context.Context, inv *domain.InvestmentRequest) error {
	query := `INSERT INTO investment_requests (` + requestBaseColumns + `,
		project_name, category, description, horizon_months)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := append(r.insertArgs(&inv.Request), inv.ProjectName, inv.Category, inv.Description, inv.HorizonMonths)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("investment request %s: %w", inv.Code, ErrDuplicate)
		}
		return fmt.Errorf("inserting investment request: %w", err)
	}
	return nil
}

func (r *SQLiteInvestmentRepo) GetInvestment(ctx context.Context, id string) (*domain.InvestmentRequest, error) {
	query := `SELECT ` + requestBaseColumns + `, project_name, category, description, horizon_months
		FROM investment_requests WHERE id = ?`
	var inv domain.InvestmentRequest
	base, err := r.scanRequest(r.db.QueryRowContext(ctx, query, id),
		&inv.ProjectName, &inv.Category, &inv.Description, &inv.HorizonMonths)
	if err != nil {
		return nil, err
	}
	inv.Request = *base
	return &inv, nil
}

// SQLiteCashRequestRepo stores cash disbursement requests.
type SQLiteCashRequestRepo struct {
	sqliteRequestView
}

func NewSQLiteCashRequestRepo(conn db.DBTX) *SQLiteCashRequestRepo {
	return &SQLiteCashRequestRepo{sqliteRequestView{db: conn, kind: domain.KindCashRequest, table: "cash_requests"}}
}

func (r *SQLiteCashRequestRepo) Create(ctx context.Context, cr *domain.CashRequest) error {
	query := `INSERT INTO cash_requests (` + requestBaseColumns + `, purpose, payee, needed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := append(r.insertArgs(&cr.Request), cr.Purpose, cr.Payee, nullableTimeToString(cr.NeededBy))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("cash request %s: %w", cr.Code, ErrDuplicate)
		}
		return fmt.Errorf("inserting cash request: %w", err)
	}
	return nil
}

func (r *SQLiteCashRequestRepo) GetCashRequest(ctx context.Context, id string) (*domain.CashRequest, error) {
	query := `SELECT ` + requestBaseColumns + `, purpose, payee, needed_by FROM cash_requests WHERE id = ?`
	var (
		cr       domain.CashRequest
		neededBy sql.NullString
	)
	base, err := r.scanRequest(r.db.QueryRowContext(ctx, query, id), &cr.Purpose, &cr.Payee, &neededBy)
	if err != nil {
		return nil, err
	}
	cr.Request = *base
	cr.NeededBy = parseNullableTime(neededBy)
	return &cr, nil
}

func nowUTC() string {
	return formatTime(timeNow())
}
