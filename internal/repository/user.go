package repository

import (
	"context"
	"database/sql"
	"errors"

	"caseflow/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone, role
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)

	var u domain.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListAssignable returns users whose role may hold case assignments. Clients
// and legal-only roles never show up in assignment choices.
func (r *UserRepository) ListAssignable(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone, role
		FROM users
		WHERE deleted_at IS NULL
		  AND role IN ('debt_collector', 'credit_head', 'law_firm_admin', 'admin')
		ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
