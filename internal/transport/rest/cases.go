package rest

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"caseflow/internal/domain"
	"caseflow/internal/repository"
	"caseflow/internal/service"
	"caseflow/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) createCase(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	in, err := ValidateCreateCaseRequest(r)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	c, err := h.cases.Create(r.Context(), actor, *in)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	SuccessCreated(w, "case created", newCaseResponse(c, time.Now()))
}

func (h *Handler) listCases(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCasesFilter(r)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	cases, err := h.cases.List(r.Context(), *filter)
	if err != nil {
		log.Printf("[HTTP] list cases error: %v", err)
		ErrorInternal(w, "failed to list cases")
		return
	}

	now := time.Now()
	out := make([]CaseResponse, 0, len(cases))
	for i := range cases {
		out = append(out, newCaseResponse(&cases[i], now))
	}
	Success(w, "ok", out)
}

func (h *Handler) getCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Get(r.Context(), chi.URLParam(r, "case_id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "ok", newCaseResponse(c, time.Now()))
}

func (h *Handler) getCaseSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.projections.Summary(r.Context(), chi.URLParam(r, "case_id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "ok", summary)
}

func (h *Handler) updateCaseStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.Status == "" {
		ErrorBadRequest(w, "status is required")
		return
	}
	to := domain.CaseStatus(req.Status)
	if !domain.IsValidCaseStatus(to) {
		ErrorBadRequest(w, "unknown status")
		return
	}

	c, err := h.cases.UpdateStatus(r.Context(), actor, chi.URLParam(r, "case_id"), to)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "status updated", newCaseResponse(c, time.Now()))
}

func (h *Handler) assignCase(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	var raw struct {
		UserID interface{} `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	userID, err := toInt64Ptr(raw.UserID)
	if err != nil {
		ErrorFromDomain(w, fieldError("user_id", err))
		return
	}
	if userID == nil {
		ErrorBadRequest(w, "user_id is required")
		return
	}

	c, err := h.cases.Assign(r.Context(), actor, chi.URLParam(r, "case_id"), *userID)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "case assigned", newCaseResponse(c, time.Now()))
}

type rawCreateCaseRequest struct {
	Debtor struct {
		Name  string      `json:"name"`
		Email interface{} `json:"email"`
		Phone interface{} `json:"phone"`
	} `json:"debtor"`
	Creditor struct {
		Name  string      `json:"name"`
		Email interface{} `json:"email"`
		Phone interface{} `json:"phone"`
	} `json:"creditor"`
	DebtAmount interface{} `json:"debt_amount"`
	Currency   string      `json:"currency"`
	Priority   string      `json:"priority"`
}

func ValidateCreateCaseRequest(r *http.Request) (*service.CreateCaseInput, error) {
	var raw rawCreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, domain.NewValidationError("body", "invalid JSON")
	}

	if raw.DebtAmount == nil {
		return nil, domain.NewValidationError("debt_amount", "debt_amount is required")
	}
	amount, err := toDecimal(raw.DebtAmount)
	if err != nil {
		return nil, fieldError("debt_amount", err)
	}

	debtorEmail, err := toStringPtr(raw.Debtor.Email)
	if err != nil {
		return nil, fieldError("debtor.email", err)
	}
	debtorPhone, err := toStringPtr(raw.Debtor.Phone)
	if err != nil {
		return nil, fieldError("debtor.phone", err)
	}
	creditorEmail, err := toStringPtr(raw.Creditor.Email)
	if err != nil {
		return nil, fieldError("creditor.email", err)
	}
	creditorPhone, err := toStringPtr(raw.Creditor.Phone)
	if err != nil {
		return nil, fieldError("creditor.phone", err)
	}

	return &service.CreateCaseInput{
		Debtor: domain.Party{
			Name:  raw.Debtor.Name,
			Email: debtorEmail,
			Phone: debtorPhone,
		},
		Creditor: domain.Party{
			Name:  raw.Creditor.Name,
			Email: creditorEmail,
			Phone: creditorPhone,
		},
		DebtAmount: amount,
		Currency:   raw.Currency,
		Priority:   domain.Priority(raw.Priority),
	}, nil
}

func parseCasesFilter(r *http.Request) (*repository.CasesFilter, error) {
	var filter repository.CasesFilter
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := domain.CaseStatus(s)
		if !domain.IsValidCaseStatus(status) {
			return nil, domain.NewValidationError("status", "unknown status")
		}
		filter.Status = &status
	}
	if s := q.Get("assigned_to"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("assigned_to", "assigned_to must be integer")
		}
		filter.AssignedTo = &id
	}
	if s := q.Get("overdue"); s != "" {
		overdue, err := strconv.ParseBool(s)
		if err != nil {
			return nil, domain.NewValidationError("overdue", "overdue must be boolean")
		}
		filter.Overdue = overdue
	}
	return &filter, nil
}
