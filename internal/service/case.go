package service

import (
	"context"
	"fmt"
	"time"

	"caseflow/internal/domain"
	"caseflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaseRepository is the durable store behind the state machine. Every mutating
// method applies its guards atomically against one case's rows, so concurrent
// calls resolve to exactly one winner.
type CaseRepository interface {
	NextCaseNumber(ctx context.Context, now time.Time) (string, error)
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context, f repository.CasesFilter) ([]domain.Case, error)
	Assign(ctx context.Context, caseID string, userID int64, at time.Time) error
	UpdateStatus(ctx context.Context, caseID string, from, to domain.CaseStatus, at time.Time) error
	AddNote(ctx context.Context, n *domain.Note, advance bool) error
	AddDocument(ctx context.Context, d *domain.Document) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListAssignable(ctx context.Context) ([]domain.User, error)
}

// Notifier pushes case events to connected users. Calls happen strictly after
// the mutation has committed; delivery is fire-and-forget.
type Notifier interface {
	CaseAssigned(ctx context.Context, userID int64, c *domain.Case) error
	NoteAdded(ctx context.Context, userID int64, c *domain.Case, n *domain.Note) error
}

// Cache is the small slice of redis the services use for summary projections.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type CreateCaseInput struct {
	Debtor     domain.Party
	Creditor   domain.Party
	DebtAmount decimal.Decimal
	Currency   string
	Priority   domain.Priority
}

type NoteInput struct {
	Content      string
	NotedAt      time.Time
	FollowUpDate *time.Time
}

type CaseService struct {
	repo  CaseRepository
	users UserRepository
	ws    Notifier
	cache Cache

	escalationFee decimal.Decimal
}

func NewCaseService(repo CaseRepository, users UserRepository, ws Notifier, cache Cache, escalationFee decimal.Decimal) *CaseService {
	return &CaseService{
		repo:          repo,
		users:         users,
		ws:            ws,
		cache:         cache,
		escalationFee: escalationFee,
	}
}

// Create opens a new collection case. The firm's escalation fee is snapshotted
// onto the case so later configuration changes do not reprice an in-flight
// escalation.
func (s *CaseService) Create(ctx context.Context, actor domain.Actor, in CreateCaseInput) (*domain.Case, error) {
	if !actor.Role.CanCreateCases() {
		return nil, fmt.Errorf("role %s cannot open cases: %w", actor.Role, domain.ErrUnauthorized)
	}

	now := time.Now().UTC()
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}

	c := &domain.Case{
		ID:            uuid.NewString(),
		Debtor:        in.Debtor,
		Creditor:      in.Creditor,
		DebtAmount:    in.DebtAmount,
		Currency:      in.Currency,
		Status:        domain.CaseStatusNew,
		Priority:      in.Priority,
		EscalationFee: s.escalationFee,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	number, err := s.repo.NextCaseNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	c.CaseNumber = number

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CaseService) Get(ctx context.Context, caseID string) (*domain.Case, error) {
	return s.repo.GetByID(ctx, caseID)
}

func (s *CaseService) List(ctx context.Context, f repository.CasesFilter) ([]domain.Case, error) {
	return s.repo.List(ctx, f)
}

// Assign hands the case to a collection-side user. Only roles with the
// case-assignment capability may call it; the target must hold an assignable
// role. Re-assignment at a non-terminal status keeps notes and payments.
func (s *CaseService) Assign(ctx context.Context, actor domain.Actor, caseID string, userID int64) (*domain.Case, error) {
	if !actor.Role.CanAssignCases() {
		return nil, fmt.Errorf("role %s cannot assign cases: %w", actor.Role, domain.ErrUnauthorized)
	}

	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status.Terminal() {
		return nil, fmt.Errorf("case %s is %s: %w", c.CaseNumber, c.Status, domain.ErrInvalidState)
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !target.Role.Assignable() {
		return nil, domain.NewValidationError("user_id", "user cannot be assigned cases")
	}

	if err := s.repo.Assign(ctx, caseID, userID, time.Now().UTC()); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, caseID)
	_ = s.ws.CaseAssigned(ctx, userID, updated)

	return updated, nil
}

// AddNote appends a note. A note carrying a follow-up date advances an
// assigned or in_progress case to follow_up_required; it never regresses a
// more advanced status.
func (s *CaseService) AddNote(ctx context.Context, actor domain.Actor, caseID string, in NoteInput) (*domain.Note, error) {
	if in.Content == "" {
		return nil, domain.NewValidationError("content", "note content is required")
	}

	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	notedAt := in.NotedAt
	if notedAt.IsZero() {
		notedAt = now
	}

	n := &domain.Note{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		AuthorID:     actor.UserID,
		Content:      in.Content,
		NotedAt:      notedAt,
		FollowUpDate: in.FollowUpDate,
		CreatedAt:    now,
	}

	advance := in.FollowUpDate != nil &&
		(c.Status == domain.CaseStatusAssigned || c.Status == domain.CaseStatusInProgress)

	if err := s.repo.AddNote(ctx, n, advance); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, caseID)
	if c.AssignedTo != nil {
		_ = s.ws.NoteAdded(ctx, *c.AssignedTo, c, n)
	}

	return n, nil
}

// UpdateStatus applies a direct status edit within the state machine.
// escalated_to_legal is rejected here unconditionally: it is reachable only
// through a confirmed escalation payment.
func (s *CaseService) UpdateStatus(ctx context.Context, actor domain.Actor, caseID string, to domain.CaseStatus) (*domain.Case, error) {
	if !domain.IsValidCaseStatus(to) {
		return nil, domain.NewValidationError("status", "unknown case status")
	}
	if to == domain.CaseStatusEscalatedToLegal {
		return nil, fmt.Errorf("escalation requires a confirmed fee payment: %w", domain.ErrInvalidState)
	}

	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}
	if !c.Status.CanTransition(to) {
		return nil, fmt.Errorf("cannot move case from %s to %s: %w", c.Status, to, domain.ErrInvalidState)
	}

	if err := s.repo.UpdateStatus(ctx, caseID, c.Status, to, time.Now().UTC()); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, caseID)
	return s.repo.GetByID(ctx, caseID)
}

// AttachDocument records an already-uploaded object as a case document.
func (s *CaseService) AttachDocument(ctx context.Context, actor domain.Actor, caseID, name, objectKey, contentType string, size int64) (*domain.Document, error) {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := requireAssigneeOrPrivileged(actor, c); err != nil {
		return nil, err
	}

	d := &domain.Document{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		Name:        name,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  actor.UserID,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.repo.AddDocument(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *CaseService) invalidateSummary(ctx context.Context, caseID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, summaryCacheKey(caseID))
}

// requireAssigneeOrPrivileged is the shared mutation gate: the assigned user
// or any privileged role.
func requireAssigneeOrPrivileged(actor domain.Actor, c *domain.Case) error {
	if actor.Role.Privileged() {
		return nil
	}
	if c.AssignedTo != nil && *c.AssignedTo == actor.UserID {
		return nil
	}
	return fmt.Errorf("case %s is not assigned to caller: %w", c.CaseNumber, domain.ErrUnauthorized)
}

func summaryCacheKey(caseID string) string {
	return "case_summary:" + caseID
}
