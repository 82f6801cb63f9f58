package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"caseflow/internal/domain"
	"caseflow/internal/service"
	"caseflow/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) addPromisedPayment(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	in, err := ValidatePromisedPaymentRequest(r)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	payment, err := h.ledger.AddPromisedPayment(r.Context(), actor, chi.URLParam(r, "case_id"), *in)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	SuccessCreated(w, "promised payment added", newPromisedPaymentResponse(payment, time.Now()))
}

func (h *Handler) updatePromisedPayment(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	in, err := ValidatePromisedPaymentUpdateRequest(r)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	payment, err := h.ledger.UpdateStatus(r.Context(), actor, chi.URLParam(r, "case_id"), chi.URLParam(r, "payment_id"), *in)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	Success(w, "promised payment updated", newPromisedPaymentResponse(payment, time.Now()))
}

type rawPromisedPaymentRequest struct {
	Amount        interface{} `json:"amount"`
	Currency      string      `json:"currency"`
	PromisedDate  interface{} `json:"promised_date"`
	Notes         string      `json:"notes"`
	PaymentMethod interface{} `json:"payment_method"`
}

func ValidatePromisedPaymentRequest(r *http.Request) (*service.PromisedPaymentInput, error) {
	var raw rawPromisedPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, domain.NewValidationError("body", "invalid JSON")
	}

	if raw.Amount == nil {
		return nil, domain.NewValidationError("amount", "amount is required")
	}
	amount, err := toDecimal(raw.Amount)
	if err != nil {
		return nil, fieldError("amount", err)
	}

	promisedDate, err := toDatePtr(raw.PromisedDate)
	if err != nil {
		return nil, fieldError("promised_date", err)
	}
	if promisedDate == nil {
		return nil, domain.NewValidationError("promised_date", "promised_date is required")
	}

	method, err := toStringPtr(raw.PaymentMethod)
	if err != nil {
		return nil, fieldError("payment_method", err)
	}

	return &service.PromisedPaymentInput{
		Amount:        amount,
		Currency:      raw.Currency,
		PromisedDate:  *promisedDate,
		Notes:         raw.Notes,
		PaymentMethod: method,
	}, nil
}

type rawPromisedPaymentUpdateRequest struct {
	Status        string      `json:"status"`
	PaymentMethod interface{} `json:"payment_method"`
}

func ValidatePromisedPaymentUpdateRequest(r *http.Request) (*service.UpdatePromisedPaymentInput, error) {
	var raw rawPromisedPaymentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, domain.NewValidationError("body", "invalid JSON")
	}

	if raw.Status == "" {
		return nil, domain.NewValidationError("status", "status is required")
	}

	method, err := toStringPtr(raw.PaymentMethod)
	if err != nil {
		return nil, fieldError("payment_method", err)
	}

	return &service.UpdatePromisedPaymentInput{
		Status:        domain.PromisedPaymentStatus(raw.Status),
		PaymentMethod: method,
	}, nil
}
