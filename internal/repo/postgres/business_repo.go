package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrSlugTaken        = errors.New("business slug is taken")
)

type BusinessRepo struct {
	pool *pgxpool.Pool
}

type BusinessRecord struct {
	ID             int64
	Slug           string
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
	CityID         int64
	OwnerID        *int64
	IsVisible      bool
	IsVerified     bool
	IsPinned       bool
	IsTest         bool
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BusinessInsert struct {
	Slug           string
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
	CityID         int64
	OwnerID        *int64
	IsVisible      bool
}

// BusinessPatch carries a partial update: nil fields stay untouched.
type BusinessPatch struct {
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
	CategoryID     *int64
	SubcategoryID  *int64
	NeighborhoodID *int64
	CityID         *int64
	IsVisible      *bool
	IsVerified     *bool
	IsPinned       *bool
}

// BusinessFilter narrows the public list. Each reference accepts an id or a
// slug; zero values mean "no filter".
type BusinessFilter struct {
	CategoryID       int64
	CategorySlug     string
	SubcategoryID    int64
	SubcategorySlug  string
	NeighborhoodID   int64
	NeighborhoodSlug string
	CityID           int64
	CitySlug         string
	Query            string
	Limit            int
	Offset           int
}

const businessColumns = `
	id, slug, name_he, name_ru, description_he, description_ru,
	address_he, address_ru, opening_hours_he, opening_hours_ru,
	phone, whatsapp, website, email, submitter_email,
	category_id, subcategory_id, neighborhood_id, city_id, owner_id,
	is_visible, is_verified, is_pinned, is_test,
	deleted_at, created_at, updated_at`

func NewBusinessRepo(pool *pgxpool.Pool) *BusinessRepo {
	return &BusinessRepo{pool: pool}
}

func (r *BusinessRepo) Create(ctx context.Context, in BusinessInsert) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	return createBusiness(ctx, r.pool, in)
}

func (r *BusinessRepo) CreateTx(ctx context.Context, tx pgx.Tx, in BusinessInsert) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}
	return createBusiness(ctx, tx, in)
}

// createBusiness resolves slug collisions with ON CONFLICT DO NOTHING rather
// than letting the unique violation surface: a raised error would abort the
// surrounding approval transaction, while a zero-row insert lets the caller
// retry with the next slug candidate.
func createBusiness(ctx context.Context, q querier, in BusinessInsert) (int64, error) {
	if strings.TrimSpace(in.Slug) == "" {
		return 0, fmt.Errorf("business slug is required")
	}

	var id int64
	err := q.QueryRow(ctx, `
INSERT INTO businesses (
	slug, name_he, name_ru, description_he, description_ru,
	address_he, address_ru, opening_hours_he, opening_hours_ru,
	phone, whatsapp, website, email, submitter_email,
	category_id, subcategory_id, neighborhood_id, city_id, owner_id,
	is_visible, is_verified, is_pinned, is_test,
	created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5,
	$6, $7, $8, $9,
	$10, $11, $12, $13, $14,
	$15, $16, $17, $18, $19,
	$20, FALSE, FALSE, FALSE,
	NOW(), NOW()
)
ON CONFLICT (slug) DO NOTHING
RETURNING id
`,
		in.Slug, in.NameHe, in.NameRu, in.DescriptionHe, in.DescriptionRu,
		in.AddressHe, in.AddressRu, in.OpeningHoursHe, in.OpeningHoursRu,
		in.Phone, in.Whatsapp, in.Website, in.Email, in.SubmitterEmail,
		in.CategoryID, in.SubcategoryID, in.NeighborhoodID, in.CityID, in.OwnerID,
		in.IsVisible,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return 0, ErrSlugTaken
		}
		return 0, fmt.Errorf("insert business: %w", err)
	}

	return id, nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id int64) (BusinessRecord, error) {
	if r.pool == nil {
		return BusinessRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return BusinessRecord{}, fmt.Errorf("invalid business id")
	}

	return r.queryOne(ctx, `
SELECT`+businessColumns+`
FROM businesses
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1
`, id)
}

func (r *BusinessRepo) GetPublicBySlug(ctx context.Context, slug string) (BusinessRecord, error) {
	if r.pool == nil {
		return BusinessRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(slug) == "" {
		return BusinessRecord{}, fmt.Errorf("business slug is required")
	}

	return r.queryOne(ctx, `
SELECT`+businessColumns+`
FROM businesses
WHERE slug = $1 AND deleted_at IS NULL AND is_visible AND NOT is_test
LIMIT 1
`, slug)
}

func (r *BusinessRepo) List(ctx context.Context, filter BusinessFilter) ([]BusinessRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+businessColumns+`
FROM businesses
WHERE deleted_at IS NULL
  AND is_visible
  AND NOT is_test
  AND ($1 = 0 OR category_id = $1)
  AND ($2 = '' OR category_id IN (SELECT id FROM categories WHERE slug = $2))
  AND ($3 = 0 OR subcategory_id = $3)
  AND ($4 = '' OR subcategory_id IN (SELECT id FROM subcategories WHERE slug = $4))
  AND ($5 = 0 OR neighborhood_id = $5)
  AND ($6 = '' OR neighborhood_id IN (SELECT id FROM neighborhoods WHERE slug = $6))
  AND ($7 = 0 OR city_id = $7)
  AND ($8 = '' OR city_id IN (SELECT id FROM cities WHERE slug = $8))
  AND ($9 = '' OR name_he ILIKE '%' || $9 || '%' OR name_ru ILIKE '%' || $9 || '%')
ORDER BY is_pinned DESC, is_verified DESC, name_he ASC, id ASC
LIMIT $10 OFFSET $11
`,
		filter.CategoryID, strings.TrimSpace(filter.CategorySlug),
		filter.SubcategoryID, strings.TrimSpace(filter.SubcategorySlug),
		filter.NeighborhoodID, strings.TrimSpace(filter.NeighborhoodSlug),
		filter.CityID, strings.TrimSpace(filter.CitySlug),
		strings.TrimSpace(filter.Query), filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	return scanBusinessRows(rows)
}

func (r *BusinessRepo) ListByOwner(ctx context.Context, ownerID int64) ([]BusinessRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if ownerID <= 0 {
		return nil, fmt.Errorf("invalid owner id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+businessColumns+`
FROM businesses
WHERE owner_id = $1 AND deleted_at IS NULL
ORDER BY name_he ASC, id ASC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner businesses: %w", err)
	}
	defer rows.Close()

	return scanBusinessRows(rows)
}

func (r *BusinessRepo) UpdateFields(ctx context.Context, id int64, patch BusinessPatch) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	return applyBusinessPatch(ctx, r.pool, id, patch)
}

func (r *BusinessRepo) UpdateFieldsTx(ctx context.Context, tx pgx.Tx, id int64, patch BusinessPatch) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	return applyBusinessPatch(ctx, tx, id, patch)
}

func applyBusinessPatch(ctx context.Context, q querier, id int64, patch BusinessPatch) error {
	if id <= 0 {
		return fmt.Errorf("invalid business id")
	}

	tag, err := q.Exec(ctx, `
UPDATE businesses
SET
	name_he = COALESCE($2, name_he),
	name_ru = COALESCE($3, name_ru),
	description_he = COALESCE($4, description_he),
	description_ru = COALESCE($5, description_ru),
	address_he = COALESCE($6, address_he),
	address_ru = COALESCE($7, address_ru),
	opening_hours_he = COALESCE($8, opening_hours_he),
	opening_hours_ru = COALESCE($9, opening_hours_ru),
	phone = COALESCE($10, phone),
	whatsapp = COALESCE($11, whatsapp),
	website = COALESCE($12, website),
	email = COALESCE($13, email),
	category_id = COALESCE($14, category_id),
	subcategory_id = COALESCE($15, subcategory_id),
	neighborhood_id = COALESCE($16, neighborhood_id),
	city_id = COALESCE($17, city_id),
	is_visible = COALESCE($18, is_visible),
	is_verified = COALESCE($19, is_verified),
	is_pinned = COALESCE($20, is_pinned),
	updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL
`,
		id,
		patch.NameHe, patch.NameRu, patch.DescriptionHe, patch.DescriptionRu,
		patch.AddressHe, patch.AddressRu, patch.OpeningHoursHe, patch.OpeningHoursRu,
		patch.Phone, patch.Whatsapp, patch.Website, patch.Email,
		patch.CategoryID, patch.SubcategoryID, patch.NeighborhoodID, patch.CityID,
		patch.IsVisible, patch.IsVerified, patch.IsPinned,
	)
	if err != nil {
		return fmt.Errorf("update business fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}

	return nil
}

func (r *BusinessRepo) SoftDelete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return fmt.Errorf("invalid business id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE businesses
SET deleted_at = NOW(), is_visible = FALSE, updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL
`, id)
	if err != nil {
		return fmt.Errorf("soft delete business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}

	return nil
}

// LinkOwnersByEmail attaches unowned businesses to owner accounts whose
// email equals the recorded submitter email. Owner emails are unique, so a
// business can match at most one account.
func (r *BusinessRepo) LinkOwnersByEmail(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE businesses b
SET owner_id = o.id, updated_at = NOW()
FROM business_owners o
WHERE b.owner_id IS NULL
  AND b.deleted_at IS NULL
  AND b.submitter_email IS NOT NULL
  AND LOWER(b.submitter_email) = LOWER(o.email)
`)
	if err != nil {
		return 0, fmt.Errorf("link owners by email: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *BusinessRepo) queryOne(ctx context.Context, query string, args ...any) (BusinessRecord, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	record, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BusinessRecord{}, ErrBusinessNotFound
		}
		return BusinessRecord{}, fmt.Errorf("query business: %w", err)
	}
	return record, nil
}

func scanBusiness(row pgx.Row) (BusinessRecord, error) {
	var b BusinessRecord
	err := row.Scan(
		&b.ID, &b.Slug, &b.NameHe, &b.NameRu, &b.DescriptionHe, &b.DescriptionRu,
		&b.AddressHe, &b.AddressRu, &b.OpeningHoursHe, &b.OpeningHoursRu,
		&b.Phone, &b.Whatsapp, &b.Website, &b.Email, &b.SubmitterEmail,
		&b.CategoryID, &b.SubcategoryID, &b.NeighborhoodID, &b.CityID, &b.OwnerID,
		&b.IsVisible, &b.IsVerified, &b.IsPinned, &b.IsTest,
		&b.DeletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func scanBusinessRows(rows pgx.Rows) ([]BusinessRecord, error) {
	var records []BusinessRecord
	for rows.Next() {
		record, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business rows: %w", err)
	}
	return records, nil
}
