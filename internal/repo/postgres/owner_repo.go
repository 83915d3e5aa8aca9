package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOwnerNotFound = errors.New("owner not found")
	ErrEmailTaken    = errors.New("email already registered")
)

type OwnerRepo struct {
	pool *pgxpool.Pool
}

type OwnerRecord struct {
	ID           int64
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

func NewOwnerRepo(pool *pgxpool.Pool) *OwnerRepo {
	return &OwnerRepo{pool: pool}
}

func (r *OwnerRepo) Create(ctx context.Context, email, passwordHash, displayName string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if email == "" || passwordHash == "" {
		return 0, fmt.Errorf("invalid owner payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO business_owners (email, password_hash, display_name, created_at)
VALUES (LOWER($1), $2, $3, NOW())
RETURNING id
`, email, passwordHash, displayName).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert owner: %w", err)
	}

	return id, nil
}

func (r *OwnerRepo) GetByEmail(ctx context.Context, email string) (OwnerRecord, error) {
	if r.pool == nil {
		return OwnerRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if email == "" {
		return OwnerRecord{}, fmt.Errorf("invalid owner email")
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, display_name, created_at
FROM business_owners
WHERE email = LOWER($1)
LIMIT 1
`, email)

	return scanOwner(row)
}

func (r *OwnerRepo) GetByID(ctx context.Context, id int64) (OwnerRecord, error) {
	if r.pool == nil {
		return OwnerRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return OwnerRecord{}, fmt.Errorf("invalid owner id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, display_name, created_at
FROM business_owners
WHERE id = $1
LIMIT 1
`, id)

	return scanOwner(row)
}

func scanOwner(row pgx.Row) (OwnerRecord, error) {
	var o OwnerRecord
	err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.DisplayName, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OwnerRecord{}, ErrOwnerNotFound
		}
		return OwnerRecord{}, fmt.Errorf("query owner: %w", err)
	}
	return o, nil
}
