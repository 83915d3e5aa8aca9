package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepo struct {
	pool *pgxpool.Pool
}

type ReviewRecord struct {
	ID         int64
	BusinessID int64
	Rating     int
	AuthorName string
	CommentHe  *string
	CommentRu  *string
	IsApproved bool
	IsFlagged  bool
	CreatedAt  time.Time
}

type ReviewInsert struct {
	BusinessID int64
	Rating     int
	AuthorName string
	CommentHe  *string
	CommentRu  *string
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// Create inserts an unapproved review. Reviews become public only after an
// admin approves them.
func (r *ReviewRepo) Create(ctx context.Context, in ReviewInsert) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if in.BusinessID <= 0 || in.Rating < 1 || in.Rating > 5 {
		return 0, fmt.Errorf("invalid review payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO reviews (business_id, rating, author_name, comment_he, comment_ru, is_approved, is_flagged, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, FALSE, NOW())
RETURNING id
`, in.BusinessID, in.Rating, in.AuthorName, in.CommentHe, in.CommentRu).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	return id, nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id int64) (ReviewRecord, error) {
	if r.pool == nil {
		return ReviewRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return ReviewRecord{}, fmt.Errorf("invalid review id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, business_id, rating, author_name, comment_he, comment_ru, is_approved, is_flagged, created_at
FROM reviews
WHERE id = $1
LIMIT 1
`, id)

	var rec ReviewRecord
	err := row.Scan(&rec.ID, &rec.BusinessID, &rec.Rating, &rec.AuthorName,
		&rec.CommentHe, &rec.CommentRu, &rec.IsApproved, &rec.IsFlagged, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReviewRecord{}, ErrReviewNotFound
		}
		return ReviewRecord{}, fmt.Errorf("query review: %w", err)
	}

	return rec, nil
}

func (r *ReviewRepo) ListApprovedByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]ReviewRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, business_id, rating, author_name, comment_he, comment_ru, is_approved, is_flagged, created_at
FROM reviews
WHERE business_id = $1 AND is_approved = TRUE AND is_flagged = FALSE
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var records []ReviewRecord
	for rows.Next() {
		var rec ReviewRecord
		if err := rows.Scan(&rec.ID, &rec.BusinessID, &rec.Rating, &rec.AuthorName,
			&rec.CommentHe, &rec.CommentRu, &rec.IsApproved, &rec.IsFlagged, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return records, nil
}

func (r *ReviewRepo) SetApproved(ctx context.Context, id int64, approved bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE reviews
SET is_approved = $2
WHERE id = $1
`, id, approved)
	if err != nil {
		return fmt.Errorf("set review approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// SetFlagged hides the review from public lists without deleting it.
func (r *ReviewRepo) SetFlagged(ctx context.Context, id int64, flagged bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE reviews
SET is_flagged = $2
WHERE id = $1
`, id, flagged)
	if err != nil {
		return fmt.Errorf("set review flagged: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM reviews
WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}
