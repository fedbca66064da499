package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Request is the kind-independent view of an investment proposal or cash
// disbursement. The engine only ever reads and writes this view.
type Request struct {
	ID          string
	Code        string
	Kind        RequestKind
	RequesterID string
	Amount      decimal.Decimal
	Currency    string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks field presence only; amounts are not range-checked.
func (r *Request) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRequestKind, r.Kind)
	}
	if strings.TrimSpace(r.RequesterID) == "" {
		return fmt.Errorf("%w: requester is required", ErrInvalidRequest)
	}
	if r.Amount.IsZero() {
		return fmt.Errorf("%w: amount is required", ErrInvalidRequest)
	}
	return nil
}

// DisplayCode returns the human-readable code, falling back to a truncated ID.
func (r *Request) DisplayCode() string {
	if r.Code != "" {
		return r.Code
	}
	if len(r.ID) >= 8 {
		return r.ID[:8]
	}
	return r.ID
}

type InvestmentRequest struct {
	Request
	ProjectName   string
	Category      string
	Description   string
	HorizonMonths int
}

func (r *InvestmentRequest) Validate() error {
	if err := r.Request.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.ProjectName) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidRequest)
	}
	return nil
}

type CashRequest struct {
	Request
	Purpose  string
	Payee    string
	NeededBy *time.Time
}

func (r *CashRequest) Validate() error {
	if err := r.Request.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Purpose) == "" {
		return fmt.Errorf("%w: purpose is required", ErrInvalidRequest)
	}
	return nil
}
