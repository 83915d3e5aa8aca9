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

var ErrPendingEditNotFound = errors.New("pending edit not found")

type PendingEditRepo struct {
	pool *pgxpool.Pool
}

// PendingEditRecord is a diff against a business: nil fields are not part of
// the proposed change.
type PendingEditRecord struct {
	ID             int64
	BusinessID     int64
	NameHe         *string
	NameRu         *string
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
	Status         string
	DecidedBy      *int64
	DecidedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PendingEditInsert struct {
	BusinessID     int64
	NameHe         *string
	NameRu         *string
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
}

const pendingEditColumns = `
	id, business_id, name_he, name_ru, description_he, description_ru,
	address_he, address_ru, opening_hours_he, opening_hours_ru,
	phone, whatsapp, website, email,
	status, decided_by, decided_at, created_at, updated_at`

func NewPendingEditRepo(pool *pgxpool.Pool) *PendingEditRepo {
	return &PendingEditRepo{pool: pool}
}

// Upsert keeps at most one open edit per business: a second submission
// replaces the first via the partial unique index on (business_id) WHERE
// status = 'pending'.
func (r *PendingEditRepo) Upsert(ctx context.Context, in PendingEditInsert) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if in.BusinessID <= 0 {
		return 0, fmt.Errorf("invalid pending edit payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO pending_business_edits (
	business_id, name_he, name_ru, description_he, description_ru,
	address_he, address_ru, opening_hours_he, opening_hours_ru,
	phone, whatsapp, website, email,
	status, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5,
	$6, $7, $8, $9,
	$10, $11, $12, $13,
	'pending', NOW(), NOW()
)
ON CONFLICT (business_id) WHERE status = 'pending'
DO UPDATE SET
	name_he = EXCLUDED.name_he,
	name_ru = EXCLUDED.name_ru,
	description_he = EXCLUDED.description_he,
	description_ru = EXCLUDED.description_ru,
	address_he = EXCLUDED.address_he,
	address_ru = EXCLUDED.address_ru,
	opening_hours_he = EXCLUDED.opening_hours_he,
	opening_hours_ru = EXCLUDED.opening_hours_ru,
	phone = EXCLUDED.phone,
	whatsapp = EXCLUDED.whatsapp,
	website = EXCLUDED.website,
	email = EXCLUDED.email,
	updated_at = NOW()
RETURNING id
`,
		in.BusinessID, in.NameHe, in.NameRu, in.DescriptionHe, in.DescriptionRu,
		in.AddressHe, in.AddressRu, in.OpeningHoursHe, in.OpeningHoursRu,
		in.Phone, in.Whatsapp, in.Website, in.Email,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert pending edit: %w", err)
	}

	return id, nil
}

func (r *PendingEditRepo) GetByID(ctx context.Context, id int64) (PendingEditRecord, error) {
	if r.pool == nil {
		return PendingEditRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return PendingEditRecord{}, fmt.Errorf("invalid pending edit id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+pendingEditColumns+`
FROM pending_business_edits
WHERE id = $1
LIMIT 1
`, id)

	return scanPendingEditRow(row)
}

// GetLatestByBusiness returns the newest edit for the business regardless of
// status, so the owner portal can show a rejected edit for dismissal.
func (r *PendingEditRepo) GetLatestByBusiness(ctx context.Context, businessID int64) (PendingEditRecord, error) {
	if r.pool == nil {
		return PendingEditRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if businessID <= 0 {
		return PendingEditRecord{}, fmt.Errorf("invalid business id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+pendingEditColumns+`
FROM pending_business_edits
WHERE business_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, businessID)

	return scanPendingEditRow(row)
}

func (r *PendingEditRepo) ListByStatus(ctx context.Context, status enums.PendingStatus, limit, offset int) ([]PendingEditRecord, error) {
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
SELECT`+pendingEditColumns+`
FROM pending_business_edits
WHERE status = $1
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3
`, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending edits: %w", err)
	}
	defer rows.Close()

	var records []PendingEditRecord
	for rows.Next() {
		record, err := scanPendingEdit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending edit row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending edit rows: %w", err)
	}

	return records, nil
}

func (r *PendingEditRepo) MarkApprovedTx(ctx context.Context, tx pgx.Tx, id, adminID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	return markPendingEditDecided(ctx, tx, id, adminID, enums.PendingStatusApproved)
}

func (r *PendingEditRepo) MarkRejected(ctx context.Context, id, adminID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	return markPendingEditDecided(ctx, r.pool, id, adminID, enums.PendingStatusRejected)
}

func markPendingEditDecided(ctx context.Context, q querier, id, adminID int64, status enums.PendingStatus) error {
	if id <= 0 {
		return fmt.Errorf("invalid pending edit id")
	}

	tag, err := q.Exec(ctx, `
UPDATE pending_business_edits
SET status = $2, decided_by = $3, decided_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`, id, string(status), adminID)
	if err != nil {
		return fmt.Errorf("mark pending edit %s: %w", status, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPendingEditNotFound
	}

	return nil
}

// DeleteRejected dismisses a rejected edit, returning the owner to a clean
// editable state without touching the business row.
func (r *PendingEditRepo) DeleteRejected(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid pending edit id")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM pending_business_edits
WHERE id = $1 AND status = 'rejected'
`, id)
	if err != nil {
		return fmt.Errorf("delete rejected pending edit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPendingEditNotFound
	}

	return nil
}

func scanPendingEditRow(row pgx.Row) (PendingEditRecord, error) {
	record, err := scanPendingEdit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PendingEditRecord{}, ErrPendingEditNotFound
		}
		return PendingEditRecord{}, fmt.Errorf("query pending edit: %w", err)
	}
	return record, nil
}

func scanPendingEdit(row pgx.Row) (PendingEditRecord, error) {
	var e PendingEditRecord
	err := row.Scan(
		&e.ID, &e.BusinessID, &e.NameHe, &e.NameRu, &e.DescriptionHe, &e.DescriptionRu,
		&e.AddressHe, &e.AddressRu, &e.OpeningHoursHe, &e.OpeningHoursRu,
		&e.Phone, &e.Whatsapp, &e.Website, &e.Email,
		&e.Status, &e.DecidedBy, &e.DecidedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// DeleteRejectedBefore clears rejected edits older than the retention window.
func (r *PendingEditRepo) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM pending_business_edits
WHERE status = 'rejected' AND decided_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge rejected pending edits: %w", err)
	}

	return tag.RowsAffected(), nil
}
