package rest

import (
	"net/http"
	"time"

	"caseflow/internal/domain"
)

func (h *Handler) calendarEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseRequiredDate(q.Get("from"), "from")
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	to, err := parseRequiredDate(q.Get("to"), "to")
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	events, err := h.projections.CalendarEvents(r.Context(), from, to)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "ok", events)
}

func parseRequiredDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.NewValidationError(field, field+" is required")
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be YYYY-MM-DD")
	}
	return parsed, nil
}
