package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscalationPaymentStatus string

const (
	EscalationPaymentPending   EscalationPaymentStatus = "pending"
	EscalationPaymentConfirmed EscalationPaymentStatus = "confirmed"
	EscalationPaymentCancelled EscalationPaymentStatus = "cancelled"
)

// EscalationPayment gates the transfer of a case to the legal department.
// At most one pending payment exists per case; a confirmed payment is
// immutable history.
type EscalationPayment struct {
	ID          string
	CaseID      string
	Amount      decimal.Decimal
	Currency    string
	Status      EscalationPaymentStatus
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}
