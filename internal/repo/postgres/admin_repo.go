package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAdminNotFound = errors.New("admin not found")

// AdminRepo reads admin_users. Admins are provisioned out of band with
// cmd/password-hash, so there is no insert path here.
type AdminRepo struct {
	pool *pgxpool.Pool
}

type AdminRecord struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func NewAdminRepo(pool *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (AdminRecord, error) {
	if r.pool == nil {
		return AdminRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if email == "" {
		return AdminRecord{}, fmt.Errorf("invalid admin email")
	}

	var a AdminRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, created_at
FROM admin_users
WHERE email = LOWER($1)
LIMIT 1
`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminRecord{}, ErrAdminNotFound
		}
		return AdminRecord{}, fmt.Errorf("query admin: %w", err)
	}

	return a, nil
}
