package service

import (
	"context"
	"fmt"
	"time"

	"caseflow/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository covers the promised-payment slice of the case store.
type LedgerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	AddPromisedPayment(ctx context.Context, p *domain.PromisedPayment) error
	MarkPromisedPaymentPaid(ctx context.Context, caseID, paymentID, method string, at time.Time) (*domain.PromisedPayment, error)
	CancelPromisedPayment(ctx context.Context, caseID, paymentID string) (*domain.PromisedPayment, error)
}

// LedgerNotifier pushes promised-payment events after commit.
type LedgerNotifier interface {
	PromisedPaymentAdded(ctx context.Context, userID int64, c *domain.Case, p *domain.PromisedPayment) error
	PromisedPaymentUpdated(ctx context.Context, userID int64, c *domain.Case, p *domain.PromisedPayment) error
}

type PromisedPaymentInput struct {
	Amount        decimal.Decimal
	Currency      string
	PromisedDate  time.Time
	Notes         string
	PaymentMethod *string
}

type UpdatePromisedPaymentInput struct {
	Status        domain.PromisedPaymentStatus
	PaymentMethod *string
}

type LedgerService struct {
	repo  LedgerRepository
	ws    LedgerNotifier
	cache Cache
}

func NewLedgerService(repo LedgerRepository, ws LedgerNotifier, cache Cache) *LedgerService {
	return &LedgerService{repo: repo, ws: ws, cache: cache}
}

// AddPromisedPayment appends a pending entry to the case ledger. The promised
// date may be past or future; the case status never changes. A promise in a
// currency other than the case's is rejected rather than summed nominally.
func (s *LedgerService) AddPromisedPayment(ctx context.Context, actor domain.Actor, caseID string, in PromisedPaymentInput) (*domain.PromisedPayment, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "amount must be greater than zero")
	}
	if in.PromisedDate.IsZero() {
		return nil, domain.NewValidationError("promised_date", "promised date is required")
	}

	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = c.Currency
	}
	if in.Currency != c.Currency {
		return nil, domain.NewValidationError("currency", fmt.Sprintf("promised payment currency must match case currency %s", c.Currency))
	}

	p := &domain.PromisedPayment{
		ID:            uuid.NewString(),
		CaseID:        caseID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		PromisedDate:  in.PromisedDate,
		Notes:         in.Notes,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.PromisedPaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.AddPromisedPayment(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, caseID)
	if c.AssignedTo != nil {
		_ = s.ws.PromisedPaymentAdded(ctx, *c.AssignedTo, c, p)
	}
	return p, nil
}

// UpdateStatus moves a pending entry to paid or cancelled. Both targets are
// terminal; marking a paid or cancelled entry again fails with an
// invalid-state error rather than silently succeeding.
func (s *LedgerService) UpdateStatus(ctx context.Context, actor domain.Actor, caseID, paymentID string, in UpdatePromisedPaymentInput) (*domain.PromisedPayment, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}

	var updated *domain.PromisedPayment
	switch in.Status {
	case domain.PromisedPaymentPaid:
		if in.PaymentMethod == nil || *in.PaymentMethod == "" {
			return nil, domain.NewValidationError("payment_method", "payment method is required when marking a payment as paid")
		}
		updated, err = s.repo.MarkPromisedPaymentPaid(ctx, caseID, paymentID, *in.PaymentMethod, time.Now().UTC())
	case domain.PromisedPaymentCancelled:
		updated, err = s.repo.CancelPromisedPayment(ctx, caseID, paymentID)
	default:
		return nil, domain.NewValidationError("status", "status must be paid or cancelled")
	}
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, caseID)
	if c.AssignedTo != nil {
		_ = s.ws.PromisedPaymentUpdated(ctx, *c.AssignedTo, c, updated)
	}
	return updated, nil
}

func (s *LedgerService) invalidateSummary(ctx context.Context, caseID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, summaryCacheKey(caseID))
}
