package rest

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"caseflow/internal/domain"
)

func TestErrorFromDomain_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("amount", "must be positive"), 400},
		{"not found", domain.ErrNotFound, 404},
		{"wrapped not found", fmt.Errorf("load case: %w", domain.ErrNotFound), 404},
		{"invalid state", fmt.Errorf("case is closed: %w", domain.ErrInvalidState), 409},
		{"unauthorized", domain.ErrUnauthorized, 403},
		{"unknown", fmt.Errorf("connection reset"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromDomain(rec, tc.err)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}

			var resp APIResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Status != "error" {
				t.Errorf("expected error envelope, got %q", resp.Status)
			}
		})
	}
}

func TestErrorFromDomain_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorFromDomain(rec, fmt.Errorf("pq: connection refused"))

	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Message != "internal error" {
		t.Errorf("internal detail leaked: %q", resp.Message)
	}
}
