package service

import (
	"context"
	"fmt"
	"time"

	"caseflow/internal/domain"
	"caseflow/internal/repository"

	"github.com/shopspring/decimal"
)

// fakeStore mirrors the guard semantics of the postgres repository in memory:
// status-conditional updates, one pending escalation payment per case, typed
// errors for unknown ids and terminal states.
type fakeStore struct {
	cases       map[string]*domain.Case
	escalations map[string][]*domain.EscalationPayment
	seq         int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cases:       make(map[string]*domain.Case),
		escalations: make(map[string][]*domain.EscalationPayment),
	}
}

func (f *fakeStore) put(c *domain.Case) {
	f.cases[c.ID] = c
}

func (f *fakeStore) NextCaseNumber(ctx context.Context, now time.Time) (string, error) {
	f.seq++
	return fmt.Sprintf("CASE-%d-%05d", now.Year(), f.seq), nil
}

func (f *fakeStore) Create(ctx context.Context, c *domain.Case) error {
	cp := *c
	f.cases[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	cp.Notes = append([]domain.Note(nil), c.Notes...)
	cp.PromisedPayments = append([]domain.PromisedPayment(nil), c.PromisedPayments...)
	cp.Documents = append([]domain.Document(nil), c.Documents...)
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, filter repository.CasesFilter) ([]domain.Case, error) {
	var out []domain.Case
	for _, c := range f.cases {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) Assign(ctx context.Context, caseID string, userID int64, at time.Time) error {
	c, ok := f.cases[caseID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Status.Terminal() {
		return domain.ErrInvalidState
	}
	c.AssignedTo = &userID
	c.AssignedAt = &at
	if c.Status == domain.CaseStatusNew {
		c.Status = domain.CaseStatusAssigned
	}
	c.UpdatedAt = at
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, caseID string, from, to domain.CaseStatus, at time.Time) error {
	c, ok := f.cases[caseID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Status != from {
		return domain.ErrInvalidState
	}
	c.Status = to
	c.UpdatedAt = at
	return nil
}

func (f *fakeStore) AddNote(ctx context.Context, n *domain.Note, advance bool) error {
	c, ok := f.cases[n.CaseID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Notes = append(c.Notes, *n)
	if advance && (c.Status == domain.CaseStatusAssigned || c.Status == domain.CaseStatusInProgress) {
		c.Status = domain.CaseStatusFollowUpRequired
	}
	return nil
}

func (f *fakeStore) AddDocument(ctx context.Context, d *domain.Document) error {
	c, ok := f.cases[d.CaseID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Documents = append(c.Documents, *d)
	return nil
}

func (f *fakeStore) AddPromisedPayment(ctx context.Context, p *domain.PromisedPayment) error {
	c, ok := f.cases[p.CaseID]
	if !ok {
		return domain.ErrNotFound
	}
	c.PromisedPayments = append(c.PromisedPayments, *p)
	return nil
}

func (f *fakeStore) MarkPromisedPaymentPaid(ctx context.Context, caseID, paymentID, method string, at time.Time) (*domain.PromisedPayment, error) {
	return f.updatePromised(caseID, paymentID, func(p *domain.PromisedPayment) {
		p.Status = domain.PromisedPaymentPaid
		p.PaidAt = &at
		p.PaymentMethod = &method
	})
}

func (f *fakeStore) CancelPromisedPayment(ctx context.Context, caseID, paymentID string) (*domain.PromisedPayment, error) {
	return f.updatePromised(caseID, paymentID, func(p *domain.PromisedPayment) {
		p.Status = domain.PromisedPaymentCancelled
	})
}

func (f *fakeStore) updatePromised(caseID, paymentID string, apply func(*domain.PromisedPayment)) (*domain.PromisedPayment, error) {
	c, ok := f.cases[caseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for i := range c.PromisedPayments {
		p := &c.PromisedPayments[i]
		if p.ID != paymentID {
			continue
		}
		if p.Status != domain.PromisedPaymentPending {
			return nil, fmt.Errorf("promised payment is %s: %w", p.Status, domain.ErrInvalidState)
		}
		apply(p)
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) GetOrCreatePendingEscalation(ctx context.Context, p *domain.EscalationPayment) (*domain.EscalationPayment, error) {
	for _, existing := range f.escalations[p.CaseID] {
		if existing.Status == domain.EscalationPaymentPending {
			cp := *existing
			return &cp, nil
		}
	}
	cp := *p
	f.escalations[p.CaseID] = append(f.escalations[p.CaseID], &cp)
	out := cp
	return &out, nil
}

func (f *fakeStore) ConfirmEscalation(ctx context.Context, caseID, paymentID string, at time.Time) error {
	c, ok := f.cases[caseID]
	if !ok {
		return domain.ErrNotFound
	}
	var payment *domain.EscalationPayment
	for _, p := range f.escalations[caseID] {
		if p.ID == paymentID {
			payment = p
			break
		}
	}
	if payment == nil {
		return domain.ErrNotFound
	}
	if payment.Status != domain.EscalationPaymentPending {
		return fmt.Errorf("escalation payment is %s: %w", payment.Status, domain.ErrInvalidState)
	}
	if c.Status.Terminal() || c.Status == domain.CaseStatusEscalatedToLegal {
		return domain.ErrInvalidState
	}
	payment.Status = domain.EscalationPaymentConfirmed
	payment.ConfirmedAt = &at
	c.Status = domain.CaseStatusEscalatedToLegal
	c.EscalationDate = &at
	c.UpdatedAt = at
	return nil
}

func (f *fakeStore) CancelEscalation(ctx context.Context, caseID, paymentID string) error {
	for _, p := range f.escalations[caseID] {
		if p.ID != paymentID {
			continue
		}
		if p.Status != domain.EscalationPaymentPending {
			return fmt.Errorf("escalation payment is %s: %w", p.Status, domain.ErrInvalidState)
		}
		p.Status = domain.EscalationPaymentCancelled
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeStore) CalendarEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	var out []domain.CalendarEvent
	for _, c := range f.cases {
		for _, p := range c.PromisedPayments {
			if p.Status == domain.PromisedPaymentPending && !p.PromisedDate.Before(from) && !p.PromisedDate.After(to) {
				out = append(out, domain.CalendarEvent{Type: "promised_payment", CaseID: c.ID, CaseNumber: c.CaseNumber, Date: p.PromisedDate})
			}
		}
		if c.EscalationDate != nil && !c.EscalationDate.Before(from) && !c.EscalationDate.After(to) {
			out = append(out, domain.CalendarEvent{Type: "escalation", CaseID: c.ID, CaseNumber: c.CaseNumber, Date: *c.EscalationDate})
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[int64]domain.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) ListAssignable(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Role.Assignable() {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeNotifier records emitted event names; services publish only after the
// store mutation succeeded.
type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) record(event string) {
	f.events = append(f.events, event)
}

func (f *fakeNotifier) CaseAssigned(ctx context.Context, userID int64, c *domain.Case) error {
	f.record("case_assigned")
	return nil
}

func (f *fakeNotifier) NoteAdded(ctx context.Context, userID int64, c *domain.Case, n *domain.Note) error {
	f.record("note_added")
	return nil
}

func (f *fakeNotifier) PromisedPaymentAdded(ctx context.Context, userID int64, c *domain.Case, p *domain.PromisedPayment) error {
	f.record("promised_payment_added")
	return nil
}

func (f *fakeNotifier) PromisedPaymentUpdated(ctx context.Context, userID int64, c *domain.Case, p *domain.PromisedPayment) error {
	f.record("promised_payment_updated")
	return nil
}

func (f *fakeNotifier) EscalationInitiated(ctx context.Context, userID int64, c *domain.Case, p *domain.EscalationPayment) error {
	f.record("escalation_initiated")
	return nil
}

func (f *fakeNotifier) CaseEscalated(ctx context.Context, userID int64, c *domain.Case) error {
	f.record("case_escalated")
	return nil
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("cache miss")
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func testCase(id string, status domain.CaseStatus, assignedTo *int64) *domain.Case {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Case{
		ID:            id,
		CaseNumber:    "CASE-2026-00001",
		Debtor:        domain.Party{Name: "John Mwangi"},
		Creditor:      domain.Party{Name: "Acme Credit Ltd"},
		DebtAmount:    decimal.NewFromInt(50000),
		Currency:      "KES",
		Status:        status,
		Priority:      domain.PriorityMedium,
		AssignedTo:    assignedTo,
		EscalationFee: decimal.NewFromInt(5000),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func int64Ptr(v int64) *int64 { return &v }
