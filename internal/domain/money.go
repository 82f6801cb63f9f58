package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money pairs a decimal amount with its ISO currency code. All engine
// arithmetic stays in decimals; floats never touch amounts.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// DateBefore compares two instants at day granularity in UTC.
func DateBefore(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	ta := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	tb := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return ta.Before(tb)
}
