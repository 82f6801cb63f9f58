package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"caseflow/internal/domain"
)

type PersonalAccessTokenRepository struct {
	db *sql.DB
}

func NewPersonalAccessTokenRepository(db *sql.DB) *PersonalAccessTokenRepository {
	return &PersonalAccessTokenRepository{db: db}
}

// FindTokenByPlainToken resolves a Sanctum-style "id|secret" bearer token.
// The role is joined from the owning user so callers get a complete Actor.
func (r *PersonalAccessTokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	var (
		tokenID   *int64
		tokenPart string
	)
	if idx := strings.Index(plainToken, "|"); idx > 0 {
		if id, err := strconv.ParseInt(plainToken[:idx], 10, 64); err == nil {
			tokenID = &id
		}
		tokenPart = plainToken[idx+1:]
	} else {
		tokenPart = plainToken
	}

	sum := sha256.Sum256([]byte(tokenPart))
	hashStr := fmt.Sprintf("%x", sum)

	var pat domain.PersonalAccessToken

	if tokenID != nil {
		row := r.db.QueryRowContext(ctx, `
			SELECT t.id, t.token, t.user_id, u.role, t.expires_at
			FROM personal_access_tokens t
			JOIN users u ON u.id = t.user_id
			WHERE t.id = $1
			  AND (t.expires_at IS NULL OR t.expires_at > $2)`,
			*tokenID, time.Now(),
		)
		if err := row.Scan(&pat.ID, &pat.TokenHash, &pat.UserID, &pat.Role, &pat.ExpiresAt); err == nil {
			if pat.TokenHash == hashStr {
				return &pat, nil
			}
		}
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.token, t.user_id, u.role, t.expires_at
		FROM personal_access_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1
		  AND (t.expires_at IS NULL OR t.expires_at > $2)
		ORDER BY t.created_at DESC
		LIMIT 1`,
		hashStr, time.Now(),
	)
	if err := row.Scan(&pat.ID, &pat.TokenHash, &pat.UserID, &pat.Role, &pat.ExpiresAt); err != nil {
		return nil, errors.New("token not found")
	}
	return &pat, nil
}
