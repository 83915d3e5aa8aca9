package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/domain/enums"
)

var ErrPendingBusinessNotFound = errors.New("pending business not found")

type PendingBusinessRepo struct {
	pool *pgxpool.Pool
}

type PendingBusinessRecord struct {
	ID             int64
	NameHe         string
	NameRu         string
	DescriptionHe  *string
	DescriptionRu  *string
	AddressHe      *string
	AddressRu      *string
	OpeningHoursHe *string
	OpeningHoursRu *string
	Phone          *string
	Whatsapp       *string
	Website        *string
	Email          *string
	SubmitterEmail *string
	CategoryID     int64
	SubcategoryID  *int64
	NeighborhoodID int64
	Status         string
	DecidedBy      *int64
	DecidedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PendingBusinessInsert struct {
	NameHe         string
	NameRu         string
	DescriptionHe  *string
	DescriptionRu  *string
	AddressHe      *string
	AddressRu      *string
	OpeningHoursHe *string
	OpeningHoursRu *string
	Phone          *string
	Whatsapp       *string
	Website        *string
	Email          *string
	SubmitterEmail *string
	CategoryID     int64
	SubcategoryID  *int64
	NeighborhoodID int64
}

const pendingBusinessColumns = `
	id, name_he, name_ru, description_he, description_ru,
	address_he, address_ru, opening_hours_he, opening_hours_ru,
	phone, whatsapp, website, email, submitter_email,
	category_id, subcategory_id, neighborhood_id,
	status, decided_by, decided_at, created_at, updated_at`

func NewPendingBusinessRepo(pool *pgxpool.Pool) *PendingBusinessRepo {
	return &PendingBusinessRepo{pool: pool}
}

func (r *PendingBusinessRepo) Create(ctx context.Context, in PendingBusinessInsert) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if in.CategoryID <= 0 || in.NeighborhoodID <= 0 {
		return 0, fmt.Errorf("invalid pending business payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO pending_businesses (
	name_he, name_ru, description_he, description_ru,
	address_he, address_ru, opening_hours_he, opening_hours_ru,
	phone, whatsapp, website, email, submitter_email,
	category_id, subcategory_id, neighborhood_id,
	status, created_at, updated_at
) VALUES (
	$1, $2, $3, $4,
	$5, $6, $7, $8,
	$9, $10, $11, $12, $13,
	$14, $15, $16,
	'pending', NOW(), NOW()
)
RETURNING id
`,
		in.NameHe, in.NameRu, in.DescriptionHe, in.DescriptionRu,
		in.AddressHe, in.AddressRu, in.OpeningHoursHe, in.OpeningHoursRu,
		in.Phone, in.Whatsapp, in.Website, in.Email, in.SubmitterEmail,
		in.CategoryID, in.SubcategoryID, in.NeighborhoodID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert pending business: %w", err)
	}

	return id, nil
}

func (r *PendingBusinessRepo) GetByID(ctx context.Context, id int64) (PendingBusinessRecord, error) {
	if r.pool == nil {
		return PendingBusinessRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return PendingBusinessRecord{}, fmt.Errorf("invalid pending business id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+pendingBusinessColumns+`
FROM pending_businesses
WHERE id = $1
LIMIT 1
`, id)

	record, err := scanPendingBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PendingBusinessRecord{}, ErrPendingBusinessNotFound
		}
		return PendingBusinessRecord{}, fmt.Errorf("query pending business: %w", err)
	}
	return record, nil
}

func (r *PendingBusinessRepo) ListByStatus(ctx context.Context, status enums.PendingStatus, limit, offset int) ([]PendingBusinessRecord, error) {
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
SELECT`+pendingBusinessColumns+`
FROM pending_businesses
WHERE status = $1
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3
`, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending businesses: %w", err)
	}
	defer rows.Close()

	var records []PendingBusinessRecord
	for rows.Next() {
		record, err := scanPendingBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending business row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending business rows: %w", err)
	}

	return records, nil
}

func (r *PendingBusinessRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM pending_businesses
WHERE status = 'pending'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending businesses: %w", err)
	}

	return count, nil
}

// MarkApprovedTx flips a pending row to approved inside the same transaction
// that creates the Business, so an insert failure leaves the row pending.
func (r *PendingBusinessRepo) MarkApprovedTx(ctx context.Context, tx pgx.Tx, id, adminID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	return markPendingBusinessDecided(ctx, tx, id, adminID, enums.PendingStatusApproved)
}

func (r *PendingBusinessRepo) MarkRejected(ctx context.Context, id, adminID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	return markPendingBusinessDecided(ctx, r.pool, id, adminID, enums.PendingStatusRejected)
}

func markPendingBusinessDecided(ctx context.Context, q querier, id, adminID int64, status enums.PendingStatus) error {
	if id <= 0 {
		return fmt.Errorf("invalid pending business id")
	}

	tag, err := q.Exec(ctx, `
UPDATE pending_businesses
SET status = $2, decided_by = $3, decided_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`, id, string(status), adminID)
	if err != nil {
		return fmt.Errorf("mark pending business %s: %w", status, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPendingBusinessNotFound
	}

	return nil
}

// DeleteRejected removes a discarded submission. Only rejected rows may be
// discarded; approved rows stay as audit records.
func (r *PendingBusinessRepo) DeleteRejected(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid pending business id")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM pending_businesses
WHERE id = $1 AND status = 'rejected'
`, id)
	if err != nil {
		return fmt.Errorf("delete rejected pending business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPendingBusinessNotFound
	}

	return nil
}

func scanPendingBusiness(row pgx.Row) (PendingBusinessRecord, error) {
	var p PendingBusinessRecord
	err := row.Scan(
		&p.ID, &p.NameHe, &p.NameRu, &p.DescriptionHe, &p.DescriptionRu,
		&p.AddressHe, &p.AddressRu, &p.OpeningHoursHe, &p.OpeningHoursRu,
		&p.Phone, &p.Whatsapp, &p.Website, &p.Email, &p.SubmitterEmail,
		&p.CategoryID, &p.SubcategoryID, &p.NeighborhoodID,
		&p.Status, &p.DecidedBy, &p.DecidedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// DeleteRejectedBefore clears rejected submissions that nobody discarded,
// once they are older than the retention window.
func (r *PendingBusinessRepo) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM pending_businesses
WHERE status = 'rejected' AND decided_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge rejected pending businesses: %w", err)
	}

	return tag.RowsAffected(), nil
}
