package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"caseflow/internal/domain"

	"github.com/shopspring/decimal"
)

func newLedgerService(store *fakeStore) (*LedgerService, *fakeNotifier) {
	ws := &fakeNotifier{}
	return NewLedgerService(store, ws, newFakeCache()), ws
}

func TestAddPromisedPaymentValidation(t *testing.T) {
	store := newFakeStore()
	store.put(testCase("c1", domain.CaseStatusAssigned, int64Ptr(7)))
	svc, _ := newLedgerService(store)

	collector := domain.Actor{UserID: 7, Role: domain.RoleDebtCollector}

	_, err := svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.Zero,
		PromisedDate: time.Now(),
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("zero amount: got %v, want ValidationError", err)
	}

	_, err = svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(-100),
		PromisedDate: time.Now(),
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("negative amount: got %v, want ValidationError", err)
	}

	// Mixed-currency promises are rejected, never summed nominally.
	_, err = svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		PromisedDate: time.Now(),
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("currency mismatch: got %v, want ValidationError", err)
	}
}

func TestAddPromisedPaymentDoesNotChangeCaseStatus(t *testing.T) {
	store := newFakeStore()
	store.put(testCase("c1", domain.CaseStatusInProgress, int64Ptr(7)))
	svc, ws := newLedgerService(store)

	collector := domain.Actor{UserID: 7, Role: domain.RoleDebtCollector}
	p, err := svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(20000),
		PromisedDate: time.Now().AddDate(0, 0, 7),
		Notes:        "first installment",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.Status != domain.PromisedPaymentPending {
		t.Fatalf("new payment status = %s, want pending", p.Status)
	}
	if p.Currency != "KES" {
		t.Fatalf("payment currency = %s, want case currency KES", p.Currency)
	}

	c, _ := store.GetByID(context.Background(), "c1")
	if c.Status != domain.CaseStatusInProgress {
		t.Fatalf("case status = %s, adding a promise must not mutate status", c.Status)
	}
	if len(ws.events) == 0 || ws.events[0] != "promised_payment_added" {
		t.Fatalf("events = %v, want promised_payment_added", ws.events)
	}
}

func TestMarkPaidTerminalStates(t *testing.T) {
	store := newFakeStore()
	store.put(testCase("c1", domain.CaseStatusInProgress, int64Ptr(7)))
	svc, _ := newLedgerService(store)

	collector := domain.Actor{UserID: 7, Role: domain.RoleDebtCollector}
	method := "mpesa"

	p, err := svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(20000),
		PromisedDate: time.Now().AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	paid, err := svc.UpdateStatus(context.Background(), collector, "c1", p.ID, UpdatePromisedPaymentInput{
		Status:        domain.PromisedPaymentPaid,
		PaymentMethod: &method,
	})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatal("paidAt must be set on transition to paid")
	}
	if paid.PaymentMethod == nil || *paid.PaymentMethod != "mpesa" {
		t.Fatal("payment method must be recorded")
	}

	// Paying again must fail with invalid state.
	_, err = svc.UpdateStatus(context.Background(), collector, "c1", p.ID, UpdatePromisedPaymentInput{
		Status:        domain.PromisedPaymentPaid,
		PaymentMethod: &method,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("double mark paid: got %v, want ErrInvalidState", err)
	}

	// Cancelling a paid payment must fail too.
	_, err = svc.UpdateStatus(context.Background(), collector, "c1", p.ID, UpdatePromisedPaymentInput{
		Status: domain.PromisedPaymentCancelled,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("cancel after paid: got %v, want ErrInvalidState", err)
	}
}

func TestMarkPaidRequiresMethodAndValidStatus(t *testing.T) {
	store := newFakeStore()
	store.put(testCase("c1", domain.CaseStatusInProgress, int64Ptr(7)))
	svc, _ := newLedgerService(store)

	collector := domain.Actor{UserID: 7, Role: domain.RoleDebtCollector}
	p, _ := svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(1000),
		PromisedDate: time.Now(),
	})

	_, err := svc.UpdateStatus(context.Background(), collector, "c1", p.ID, UpdatePromisedPaymentInput{
		Status: domain.PromisedPaymentPaid,
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("missing payment method: got %v, want ValidationError", err)
	}

	_, err = svc.UpdateStatus(context.Background(), collector, "c1", p.ID, UpdatePromisedPaymentInput{
		Status: domain.PromisedPaymentPending,
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("pending target: got %v, want ValidationError", err)
	}

	_, err = svc.UpdateStatus(context.Background(), collector, "c1", "missing", UpdatePromisedPaymentInput{
		Status: domain.PromisedPaymentCancelled,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown payment id: got %v, want ErrNotFound", err)
	}
}

func TestLedgerScenarioPartialPayment(t *testing.T) {
	// debtAmount=50000 KES; promise 20000 for yesterday -> overdue; mark paid
	// -> remaining 30000 and the entry stops being overdue.
	store := newFakeStore()
	store.put(testCase("c1", domain.CaseStatusInProgress, int64Ptr(7)))
	svc, _ := newLedgerService(store)

	collector := domain.Actor{UserID: 7, Role: domain.RoleDebtCollector}
	now := time.Now().UTC()

	p, err := svc.AddPromisedPayment(context.Background(), collector, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(20000),
		PromisedDate: now.AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !p.Overdue(now) {
		t.Fatal("pending payment promised yesterday must be overdue")
	}

	method := "bank_transfer"
	paid, err := svc.UpdateStatus(context.Background(), collector, "c1", p.ID, UpdatePromisedPaymentInput{
		Status:        domain.PromisedPaymentPaid,
		PaymentMethod: &method,
	})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Overdue(now) {
		t.Fatal("paid payment must not be overdue")
	}

	c, _ := store.GetByID(context.Background(), "c1")
	if got := c.RemainingBalance(); !got.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("remaining = %s, want 30000", got)
	}
}

func TestLedgerUnauthorizedActor(t *testing.T) {
	store := newFakeStore()
	store.put(testCase("c1", domain.CaseStatusInProgress, int64Ptr(7)))
	svc, _ := newLedgerService(store)

	stranger := domain.Actor{UserID: 42, Role: domain.RoleDebtCollector}
	_, err := svc.AddPromisedPayment(context.Background(), stranger, "c1", PromisedPaymentInput{
		Amount:       decimal.NewFromInt(1000),
		PromisedDate: time.Now(),
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stranger add: got %v, want ErrUnauthorized", err)
	}
}
