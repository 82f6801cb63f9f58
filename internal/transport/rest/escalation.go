package rest

import (
	"net/http"
	"time"

	"caseflow/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) getEscalationFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.escalations.Fee(r.Context(), chi.URLParam(r, "case_id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "ok", fee)
}

func (h *Handler) initiateEscalation(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	payment, err := h.escalations.Initiate(r.Context(), actor, chi.URLParam(r, "case_id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	SuccessCreated(w, "escalation initiated", newEscalationPaymentResponse(payment))
}

func (h *Handler) confirmEscalation(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	c, err := h.escalations.Confirm(r.Context(), actor, chi.URLParam(r, "case_id"), chi.URLParam(r, "payment_id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	Success(w, "escalation confirmed", newCaseResponse(c, time.Now()))
}

func (h *Handler) cancelEscalation(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.escalations.Cancel(r.Context(), actor, chi.URLParam(r, "case_id"), chi.URLParam(r, "payment_id")); err != nil {
		ErrorFromDomain(w, err)
		return
	}

	Success(w, "escalation cancelled", nil)
}
