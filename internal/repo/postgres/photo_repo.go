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
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoLimitReached = errors.New("photo limit reached")
)

type PhotoRepo struct {
	pool *pgxpool.Pool
}

type PhotoRecord struct {
	ID         int64
	BusinessID int64
	ObjectKey  string
	Position   int
	CreatedAt  time.Time
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

// Create appends a photo at the next position, refusing once the business
// already carries maxPerBusiness active photos. The count and insert run in
// one statement so concurrent uploads cannot both pass the check.
func (r *PhotoRepo) Create(ctx context.Context, businessID int64, objectKey string, maxPerBusiness int) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if businessID <= 0 || objectKey == "" {
		return 0, fmt.Errorf("invalid photo payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO business_photos (business_id, object_key, position, created_at)
SELECT $1, $2, COALESCE(MAX(position), 0) + 1, NOW()
FROM business_photos
WHERE business_id = $1 AND deleted_at IS NULL
HAVING COUNT(*) < $3
RETURNING id
`, businessID, objectKey, maxPerBusiness).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPhotoLimitReached
		}
		return 0, fmt.Errorf("insert photo: %w", err)
	}

	return id, nil
}

func (r *PhotoRepo) GetByID(ctx context.Context, id int64) (PhotoRecord, error) {
	if r.pool == nil {
		return PhotoRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return PhotoRecord{}, fmt.Errorf("invalid photo id")
	}

	var p PhotoRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, business_id, object_key, position, created_at
FROM business_photos
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1
`, id).Scan(&p.ID, &p.BusinessID, &p.ObjectKey, &p.Position, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PhotoRecord{}, ErrPhotoNotFound
		}
		return PhotoRecord{}, fmt.Errorf("query photo: %w", err)
	}

	return p, nil
}

func (r *PhotoRepo) ListActiveByBusiness(ctx context.Context, businessID int64) ([]PhotoRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, business_id, object_key, position, created_at
FROM business_photos
WHERE business_id = $1 AND deleted_at IS NULL
ORDER BY position ASC, id ASC
`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var records []PhotoRecord
	for rows.Next() {
		var p PhotoRecord
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.ObjectKey, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo row: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photo rows: %w", err)
	}

	return records, nil
}

func (r *PhotoRepo) SoftDelete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid photo id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE business_photos
SET deleted_at = NOW()
WHERE id = $1 AND deleted_at IS NULL
`, id)
	if err != nil {
		return fmt.Errorf("soft delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}

	return nil
}

// ListDeletedBefore returns soft-deleted photos whose removal happened before
// the cutoff, for the storage purge job.
func (r *PhotoRepo) ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]PhotoRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, business_id, object_key, position, created_at
FROM business_photos
WHERE deleted_at IS NOT NULL AND deleted_at < $1
ORDER BY deleted_at ASC, id ASC
LIMIT $2
`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list deleted photos: %w", err)
	}
	defer rows.Close()

	var records []PhotoRecord
	for rows.Next() {
		var p PhotoRecord
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.ObjectKey, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deleted photo row: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted photo rows: %w", err)
	}

	return records, nil
}

// DeleteRow removes a photo row for good. Call only after the backing object
// is gone from storage.
func (r *PhotoRepo) DeleteRow(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid photo id")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM business_photos
WHERE id = $1
`, id); err != nil {
		return fmt.Errorf("delete photo row: %w", err)
	}

	return nil
}
