package rest

import (
	"errors"
	"strconv"
	"time"

	"caseflow/internal/domain"

	"github.com/shopspring/decimal"
)

func toStringPtr(v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil, nil
		}
		return &s, nil
	case float64:
		str := strconv.FormatFloat(s, 'f', -1, 64)
		return &str, nil
	default:
		return nil, domain.NewValidationError("", "must be string or empty")
	}
}

func toInt64Ptr(v interface{}) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i, nil
	case string:
		if n == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("", "must be integer or empty")
		}
		return &parsed, nil
	default:
		return nil, domain.NewValidationError("", "must be integer or empty")
	}
}

// toDatePtr accepts a YYYY-MM-DD string or nothing.
func toDatePtr(v interface{}) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.NewValidationError("", "must be YYYY-MM-DD or empty")
	}
	if s == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.NewValidationError("", "must be YYYY-MM-DD or empty")
	}
	return &parsed, nil
}

// toDecimal accepts a JSON number or a numeric string. Monetary amounts are
// carried as strings by most of our clients to avoid float rounding.
func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, domain.NewValidationError("", "must be a decimal number")
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Zero, domain.NewValidationError("", "must be a decimal number")
	}
}

func fieldError(field string, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return domain.NewValidationError(field, verr.Message)
	}
	return err
}
