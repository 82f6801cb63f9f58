package rest

import (
	"log"
	"net/http"
)

func (h *Handler) listAssignableUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.projections.AssignableUsers(r.Context())
	if err != nil {
		log.Printf("[HTTP] list assignable users error: %v", err)
		ErrorInternal(w, "failed to list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	Success(w, "ok", out)
}
