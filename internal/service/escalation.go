package service

import (
	"context"
	"fmt"
	"time"

	"caseflow/internal/domain"

	"github.com/google/uuid"
)

// EscalationRepository is the storage side of the two-phase gate. Initiation
// is get-or-create under a one-pending-per-case constraint; confirmation is a
// single transaction covering payment and case.
type EscalationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetOrCreatePendingEscalation(ctx context.Context, p *domain.EscalationPayment) (*domain.EscalationPayment, error)
	ConfirmEscalation(ctx context.Context, caseID, paymentID string, at time.Time) error
	CancelEscalation(ctx context.Context, caseID, paymentID string) error
}

type EscalationNotifier interface {
	EscalationInitiated(ctx context.Context, userID int64, c *domain.Case, p *domain.EscalationPayment) error
	CaseEscalated(ctx context.Context, userID int64, c *domain.Case) error
}

type EscalationService struct {
	repo  EscalationRepository
	ws    EscalationNotifier
	cache Cache
}

func NewEscalationService(repo EscalationRepository, ws EscalationNotifier, cache Cache) *EscalationService {
	return &EscalationService{repo: repo, ws: ws, cache: cache}
}

// Initiate opens (or returns) the case's pending escalation payment. The case
// status is untouched at this point, so retrying before confirmation hands
// back the same payment instead of minting a duplicate.
func (s *EscalationService) Initiate(ctx context.Context, actor domain.Actor, caseID string) (*domain.EscalationPayment, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseStatusEscalatedToLegal {
		return nil, fmt.Errorf("case %s is already escalated: %w", c.CaseNumber, domain.ErrInvalidState)
	}
	if c.Status.Terminal() {
		return nil, fmt.Errorf("case %s is %s: %w", c.CaseNumber, c.Status, domain.ErrInvalidState)
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}

	p := &domain.EscalationPayment{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Amount:    c.EscalationFee,
		Currency:  c.Currency,
		Status:    domain.EscalationPaymentPending,
		CreatedAt: time.Now().UTC(),
	}

	pending, err := s.repo.GetOrCreatePendingEscalation(ctx, p)
	if err != nil {
		return nil, err
	}

	if c.AssignedTo != nil {
		_ = s.ws.EscalationInitiated(ctx, *c.AssignedTo, c, pending)
	}
	return pending, nil
}

// Confirm consumes the pending payment and moves the case to
// escalated_to_legal atomically. A second confirm on the same payment id fails
// with an invalid-state error and leaves the case escalated.
func (s *EscalationService) Confirm(ctx context.Context, actor domain.Actor, caseID, paymentID string) (*domain.Case, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}

	if err := s.repo.ConfirmEscalation(ctx, caseID, paymentID, time.Now().UTC()); err != nil {
		return nil, err
	}

	escalated, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, caseID)
	if escalated.AssignedTo != nil {
		_ = s.ws.CaseEscalated(ctx, *escalated.AssignedTo, escalated)
	}
	return escalated, nil
}

// Cancel voids a dangling pending escalation payment that was initiated but
// never confirmed. Restricted to admin-capability roles; a later initiate
// creates a fresh payment at the case's current fee.
func (s *EscalationService) Cancel(ctx context.Context, actor domain.Actor, caseID, paymentID string) error {
	if !actor.Role.CanVoidEscalations() {
		return fmt.Errorf("role %s cannot void escalation payments: %w", actor.Role, domain.ErrUnauthorized)
	}
	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		return err
	}
	return s.repo.CancelEscalation(ctx, caseID, paymentID)
}

// Fee returns the fee snapshotted onto the case at creation time.
func (s *EscalationService) Fee(ctx context.Context, caseID string) (domain.Money, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.Money{Amount: c.EscalationFee, Currency: c.Currency}, nil
}

func (s *EscalationService) invalidateSummary(ctx context.Context, caseID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, summaryCacheKey(caseID))
}
