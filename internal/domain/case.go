package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

type CaseStatus string

const (
	CaseStatusNew              CaseStatus = "new"
	CaseStatusAssigned         CaseStatus = "assigned"
	CaseStatusInProgress       CaseStatus = "in_progress"
	CaseStatusFollowUpRequired CaseStatus = "follow_up_required"
	CaseStatusEscalatedToLegal CaseStatus = "escalated_to_legal"
	CaseStatusResolved         CaseStatus = "resolved"
	CaseStatusClosed           CaseStatus = "closed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Terminal statuses end the credit-collection side of a case: no reassignment,
// no escalation, no further status edits.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusResolved || s == CaseStatusClosed
}

// caseTransitions lists the direct status edits the state machine permits.
// escalated_to_legal is deliberately absent as a target: it is reachable only
// through a confirmed escalation payment.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusNew:              {CaseStatusAssigned},
	CaseStatusAssigned:         {CaseStatusInProgress, CaseStatusFollowUpRequired, CaseStatusResolved, CaseStatusClosed},
	CaseStatusInProgress:       {CaseStatusFollowUpRequired, CaseStatusResolved, CaseStatusClosed},
	CaseStatusFollowUpRequired: {CaseStatusInProgress, CaseStatusResolved, CaseStatusClosed},
	CaseStatusEscalatedToLegal: {CaseStatusResolved, CaseStatusClosed},
	CaseStatusResolved:         {},
	CaseStatusClosed:           {},
}

func (s CaseStatus) CanTransition(to CaseStatus) bool {
	for _, t := range caseTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func IsValidCaseStatus(s CaseStatus) bool {
	_, ok := caseTransitions[s]
	return ok
}

type Party struct {
	Name  string
	Email *string
	Phone *string
}

type Case struct {
	ID         string
	CaseNumber string

	Debtor   Party
	Creditor Party

	DebtAmount decimal.Decimal
	Currency   string

	Status   CaseStatus
	Priority Priority

	AssignedTo *int64
	AssignedAt *time.Time

	EscalationFee  decimal.Decimal
	EscalationDate *time.Time

	Notes            []Note
	PromisedPayments []PromisedPayment
	Documents        []Document

	CreatedAt time.Time
	UpdatedAt time.Time
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func IsValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}

// Validate checks the structural invariants of a case at creation time.
func (c *Case) Validate() error {
	if c.Debtor.Name == "" {
		return NewValidationError("debtor.name", "debtor name is required")
	}
	if c.Creditor.Name == "" {
		return NewValidationError("creditor.name", "creditor name is required")
	}
	if !c.DebtAmount.IsPositive() {
		return NewValidationError("debt_amount", "debt amount must be greater than zero")
	}
	if !IsValidCurrency(c.Currency) {
		return NewValidationError("currency", "currency must be a three-letter ISO code")
	}
	if !IsValidPriority(c.Priority) {
		return NewValidationError("priority", "unknown priority")
	}
	return nil
}

// PendingEscalationPayment returns the case's single pending escalation
// payment, if one exists.
func (c *Case) PendingEscalationPayment(payments []EscalationPayment) *EscalationPayment {
	for i := range payments {
		if payments[i].Status == EscalationPaymentPending {
			return &payments[i]
		}
	}
	return nil
}

// TotalPaid sums the case's paid promised payments. Cancelled and pending
// entries do not count.
func (c *Case) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.PromisedPayments {
		if p.Status == PromisedPaymentPaid {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// RemainingBalance is debtAmount minus the paid total, clamped at zero.
// Overpayment is not an error; it is simply never surfaced as negative debt.
func (c *Case) RemainingBalance() decimal.Decimal {
	remaining := c.DebtAmount.Sub(c.TotalPaid())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Overdue reports whether the case has at least one overdue promised payment.
func (c *Case) Overdue(now time.Time) bool {
	for _, p := range c.PromisedPayments {
		if p.Overdue(now) {
			return true
		}
	}
	return false
}
