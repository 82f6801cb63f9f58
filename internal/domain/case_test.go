package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCaseStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to CaseStatus
	}{
		{CaseStatusNew, CaseStatusAssigned},
		{CaseStatusAssigned, CaseStatusInProgress},
		{CaseStatusAssigned, CaseStatusFollowUpRequired},
		{CaseStatusInProgress, CaseStatusFollowUpRequired},
		{CaseStatusFollowUpRequired, CaseStatusInProgress},
		{CaseStatusInProgress, CaseStatusResolved},
		{CaseStatusEscalatedToLegal, CaseStatusClosed},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to CaseStatus
	}{
		{CaseStatusNew, CaseStatusInProgress},
		{CaseStatusResolved, CaseStatusInProgress},
		{CaseStatusClosed, CaseStatusAssigned},
		{CaseStatusFollowUpRequired, CaseStatusAssigned},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestEscalatedStatusUnreachableByDirectEdit(t *testing.T) {
	for from := range caseTransitions {
		if from.CanTransition(CaseStatusEscalatedToLegal) {
			t.Errorf("%s must not transition directly to escalated_to_legal", from)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !CaseStatusResolved.Terminal() || !CaseStatusClosed.Terminal() {
		t.Fatal("resolved and closed must be terminal")
	}
	if CaseStatusEscalatedToLegal.Terminal() {
		t.Fatal("escalated_to_legal is not terminal for the collection side")
	}
}

func TestRemainingBalanceClampedAtZero(t *testing.T) {
	c := Case{
		DebtAmount: decimal.NewFromInt(50000),
		Currency:   "KES",
		PromisedPayments: []PromisedPayment{
			{Amount: decimal.NewFromInt(20000), Status: PromisedPaymentPaid},
			{Amount: decimal.NewFromInt(40000), Status: PromisedPaymentPaid},
			{Amount: decimal.NewFromInt(10000), Status: PromisedPaymentPending},
			{Amount: decimal.NewFromInt(5000), Status: PromisedPaymentCancelled},
		},
	}

	if got := c.TotalPaid(); !got.Equal(decimal.NewFromInt(60000)) {
		t.Fatalf("TotalPaid = %s, want 60000", got)
	}
	if got := c.RemainingBalance(); !got.Equal(decimal.Zero) {
		t.Fatalf("RemainingBalance = %s, want 0 (overpayment never goes negative)", got)
	}
}

func TestRemainingBalancePartialPayment(t *testing.T) {
	c := Case{
		DebtAmount: decimal.NewFromInt(50000),
		Currency:   "KES",
		PromisedPayments: []PromisedPayment{
			{Amount: decimal.NewFromInt(20000), Status: PromisedPaymentPaid},
		},
	}
	if got := c.RemainingBalance(); !got.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("RemainingBalance = %s, want 30000", got)
	}
}

func TestCaseValidate(t *testing.T) {
	base := func() Case {
		return Case{
			Debtor:     Party{Name: "John Mwangi"},
			Creditor:   Party{Name: "Acme Credit Ltd"},
			DebtAmount: decimal.NewFromInt(50000),
			Currency:   "KES",
			Priority:   PriorityMedium,
		}
	}

	if err := (func() error { c := base(); return c.Validate() })(); err != nil {
		t.Fatalf("valid case rejected: %v", err)
	}

	c := base()
	c.DebtAmount = decimal.Zero
	if err := c.Validate(); !IsValidationError(err) {
		t.Fatalf("zero debt amount: got %v, want ValidationError", err)
	}

	c = base()
	c.Currency = "kes"
	if err := c.Validate(); !IsValidationError(err) {
		t.Fatalf("lowercase currency: got %v, want ValidationError", err)
	}

	c = base()
	c.Debtor.Name = ""
	if err := c.Validate(); !IsValidationError(err) {
		t.Fatalf("missing debtor name: got %v, want ValidationError", err)
	}
}

func TestCaseOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	c := Case{PromisedPayments: []PromisedPayment{
		{PromisedDate: yesterday, Status: PromisedPaymentPaid},
	}}
	if c.Overdue(now) {
		t.Fatal("paid payments must not make a case overdue")
	}

	c.PromisedPayments = append(c.PromisedPayments, PromisedPayment{
		PromisedDate: yesterday, Status: PromisedPaymentPending,
	})
	if !c.Overdue(now) {
		t.Fatal("pending payment past its date must make the case overdue")
	}
}
