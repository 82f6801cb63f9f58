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

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	in, err := ValidateNoteRequest(r)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	note, err := h.cases.AddNote(r.Context(), actor, chi.URLParam(r, "case_id"), *in)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	SuccessCreated(w, "note added", newNoteResponse(note))
}

type rawNoteRequest struct {
	Content      string      `json:"content"`
	NotedAt      interface{} `json:"noted_at"`
	FollowUpDate interface{} `json:"follow_up_date"`
}

func ValidateNoteRequest(r *http.Request) (*service.NoteInput, error) {
	var raw rawNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, domain.NewValidationError("body", "invalid JSON")
	}

	if raw.Content == "" {
		return nil, domain.NewValidationError("content", "content is required")
	}

	notedAt := time.Now()
	if raw.NotedAt != nil {
		parsed, err := toDatePtr(raw.NotedAt)
		if err != nil {
			return nil, fieldError("noted_at", err)
		}
		if parsed != nil {
			notedAt = *parsed
		}
	}

	followUp, err := toDatePtr(raw.FollowUpDate)
	if err != nil {
		return nil, fieldError("follow_up_date", err)
	}

	return &service.NoteInput{
		Content:      raw.Content,
		NotedAt:      notedAt,
		FollowUpDate: followUp,
	}, nil
}
