package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"caseflow/internal/domain"
	"caseflow/internal/repository"
)

type ctxKey string

const actorKey ctxKey = "actor"

// SanctumMiddleware authenticates Sanctum-style bearer tokens and stores the
// resolved Actor (user id + role) in the request context. Tokens are accepted
// from the Authorization header or, for websocket upgrades, the token query
// parameter.
func SanctumMiddleware(tokenRepo *repository.PersonalAccessTokenRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var pat *domain.PersonalAccessToken

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				plainToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
				if plainToken != "" {
					if p, err := tokenRepo.FindTokenByPlainToken(r.Context(), plainToken); err == nil {
						pat = p
					}
				}
			}

			if pat == nil {
				if token := r.URL.Query().Get("token"); token != "" {
					if p, err := tokenRepo.FindTokenByPlainToken(r.Context(), token); err == nil {
						pat = p
					}
				}
			}

			if pat == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if pat.ExpiresAt != nil && pat.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			actor := domain.Actor{UserID: pat.UserID, Role: pat.Role}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor returns the authenticated caller stored by SanctumMiddleware.
func GetActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	if !ok {
		return domain.Actor{}, errors.New("actor not found in context")
	}
	return actor, nil
}

// WithActor injects an actor directly, used by tests and the websocket
// fallback path.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
