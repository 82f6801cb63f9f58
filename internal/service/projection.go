package service

import (
	"context"
	"encoding/json"
	"time"

	"caseflow/internal/domain"

	"github.com/shopspring/decimal"
)

// ProjectionRepository is the read-only slice of the store used by derived
// views. Nothing here mutates a case.
type ProjectionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	CalendarEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
}

// CaseSummary is the aggregate view reporting consumes: ledger arithmetic plus
// overdue flags, all derived at read time.
type CaseSummary struct {
	CaseID          string          `json:"case_id"`
	CaseNumber      string          `json:"case_number"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	DebtAmount      decimal.Decimal `json:"debt_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	OverduePayments int             `json:"overdue_payments"`
	Overdue         bool            `json:"overdue"`
}

type ProjectionService struct {
	repo     ProjectionRepository
	users    UserRepository
	cache    Cache
	cacheTTL time.Duration
}

func NewProjectionService(repo ProjectionRepository, users UserRepository, cache Cache, cacheTTL time.Duration) *ProjectionService {
	return &ProjectionService{repo: repo, users: users, cache: cache, cacheTTL: cacheTTL}
}

// Summary computes (or serves from cache) the case's balance and overdue
// projection. Overdue is a pure function of promised dates and the clock; it
// is never persisted.
func (s *ProjectionService) Summary(ctx context.Context, caseID string) (*CaseSummary, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, summaryCacheKey(caseID)); err == nil && raw != "" {
			var cached CaseSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	overdueCount := 0
	for _, p := range c.PromisedPayments {
		if p.Overdue(now) {
			overdueCount++
		}
	}

	summary := &CaseSummary{
		CaseID:          c.ID,
		CaseNumber:      c.CaseNumber,
		Status:          string(c.Status),
		Currency:        c.Currency,
		DebtAmount:      c.DebtAmount,
		TotalPaid:       c.TotalPaid(),
		Remaining:       c.RemainingBalance(),
		OverduePayments: overdueCount,
		Overdue:         overdueCount > 0,
	}

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			_ = s.cache.Set(ctx, summaryCacheKey(caseID), string(data), s.cacheTTL)
		}
	}
	return summary, nil
}

// AssignableUsers lists users eligible for case assignment.
func (s *ProjectionService) AssignableUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListAssignable(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterAssignable(users), nil
}

// CalendarEvents exposes promised dates, follow-ups and escalation dates as a
// flat event stream over the requested window.
func (s *ProjectionService) CalendarEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "window end must be after start")
	}
	return s.repo.CalendarEvents(ctx, from, to)
}
