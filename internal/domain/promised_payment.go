package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromisedPaymentStatus string

const (
	PromisedPaymentPending   PromisedPaymentStatus = "pending"
	PromisedPaymentPaid      PromisedPaymentStatus = "paid"
	PromisedPaymentCancelled PromisedPaymentStatus = "cancelled"
)

// PromisedPayment is a debtor's commitment to pay a specific amount by a
// specific date, owned by exactly one case.
type PromisedPayment struct {
	ID            string
	CaseID        string
	Amount        decimal.Decimal
	Currency      string
	PromisedDate  time.Time
	Notes         string
	PaymentMethod *string
	Status        PromisedPaymentStatus
	PaidAt        *time.Time
	CreatedAt     time.Time
}

// Terminal reports whether the payment can no longer change status.
func (p *PromisedPayment) Terminal() bool {
	return p.Status == PromisedPaymentPaid || p.Status == PromisedPaymentCancelled
}

// Overdue is a derived display state, never persisted: a pending payment whose
// promised date has passed. The comparison is date-only so a payment promised
// for today is not overdue until tomorrow.
func (p *PromisedPayment) Overdue(now time.Time) bool {
	if p.Status != PromisedPaymentPending {
		return false
	}
	return DateBefore(p.PromisedDate, now)
}
