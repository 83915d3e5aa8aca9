package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrSubcategoryNotFound  = errors.New("subcategory not found")
	ErrNeighborhoodNotFound = errors.New("neighborhood not found")
)

// LookupRepo serves the reference tables: categories, subcategories,
// neighborhoods, cities. They change rarely and only via out-of-band seeding.
type LookupRepo struct {
	pool *pgxpool.Pool
}

type CategoryRecord struct {
	ID           int64
	Slug         string
	NameHe       string
	NameRu       string
	IsActive     bool
	DisplayOrder int
}

type SubcategoryRecord struct {
	ID           int64
	CategoryID   int64
	Slug         string
	NameHe       string
	NameRu       string
	IsActive     bool
	DisplayOrder int
}

type NeighborhoodRecord struct {
	ID       int64
	CityID   int64
	Slug     string
	NameHe   string
	NameRu   string
	CityHe   string
	CityRu   string
	Lat      float64
	Lon      float64
	IsActive bool
}

// NeighborhoodPoint is the minimal shape the nearest-neighborhood search
// needs.
type NeighborhoodPoint struct {
	ID     int64
	NameHe string
	NameRu string
	Lat    float64
	Lon    float64
}

func NewLookupRepo(pool *pgxpool.Pool) *LookupRepo {
	return &LookupRepo{pool: pool}
}

func (r *LookupRepo) GetCategory(ctx context.Context, id int64) (CategoryRecord, error) {
	if r.pool == nil {
		return CategoryRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return CategoryRecord{}, fmt.Errorf("invalid category id")
	}

	var c CategoryRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, slug, name_he, name_ru, is_active, display_order
FROM categories
WHERE id = $1 AND is_active = TRUE
LIMIT 1
`, id).Scan(&c.ID, &c.Slug, &c.NameHe, &c.NameRu, &c.IsActive, &c.DisplayOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CategoryRecord{}, ErrCategoryNotFound
		}
		return CategoryRecord{}, fmt.Errorf("query category: %w", err)
	}

	return c, nil
}

func (r *LookupRepo) GetSubcategory(ctx context.Context, id int64) (SubcategoryRecord, error) {
	if r.pool == nil {
		return SubcategoryRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return SubcategoryRecord{}, fmt.Errorf("invalid subcategory id")
	}

	var s SubcategoryRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, category_id, slug, name_he, name_ru, is_active, display_order
FROM subcategories
WHERE id = $1 AND is_active = TRUE
LIMIT 1
`, id).Scan(&s.ID, &s.CategoryID, &s.Slug, &s.NameHe, &s.NameRu, &s.IsActive, &s.DisplayOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubcategoryRecord{}, ErrSubcategoryNotFound
		}
		return SubcategoryRecord{}, fmt.Errorf("query subcategory: %w", err)
	}

	return s, nil
}

func (r *LookupRepo) GetNeighborhood(ctx context.Context, id int64) (NeighborhoodRecord, error) {
	if r.pool == nil {
		return NeighborhoodRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return NeighborhoodRecord{}, fmt.Errorf("invalid neighborhood id")
	}

	var n NeighborhoodRecord
	err := r.pool.QueryRow(ctx, `
SELECT n.id, n.city_id, n.slug, n.name_he, n.name_ru,
       c.name_he, c.name_ru, n.lat, n.lon, n.is_active
FROM neighborhoods n
JOIN cities c ON c.id = n.city_id
WHERE n.id = $1 AND n.is_active = TRUE
LIMIT 1
`, id).Scan(&n.ID, &n.CityID, &n.Slug, &n.NameHe, &n.NameRu,
		&n.CityHe, &n.CityRu, &n.Lat, &n.Lon, &n.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NeighborhoodRecord{}, ErrNeighborhoodNotFound
		}
		return NeighborhoodRecord{}, fmt.Errorf("query neighborhood: %w", err)
	}

	return n, nil
}

func (r *LookupRepo) ListCategories(ctx context.Context) ([]CategoryRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, slug, name_he, name_ru, is_active, display_order
FROM categories
WHERE is_active = TRUE
ORDER BY display_order ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var records []CategoryRecord
	for rows.Next() {
		var c CategoryRecord
		if err := rows.Scan(&c.ID, &c.Slug, &c.NameHe, &c.NameRu, &c.IsActive, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return records, nil
}

func (r *LookupRepo) ListSubcategories(ctx context.Context, categoryID int64) ([]SubcategoryRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, category_id, slug, name_he, name_ru, is_active, display_order
FROM subcategories
WHERE is_active = TRUE AND ($1 = 0 OR category_id = $1)
ORDER BY display_order ASC, id ASC
`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var records []SubcategoryRecord
	for rows.Next() {
		var s SubcategoryRecord
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Slug, &s.NameHe, &s.NameRu, &s.IsActive, &s.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan subcategory row: %w", err)
		}
		records = append(records, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategory rows: %w", err)
	}

	return records, nil
}

func (r *LookupRepo) ListNeighborhoods(ctx context.Context) ([]NeighborhoodRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT n.id, n.city_id, n.slug, n.name_he, n.name_ru,
       c.name_he, c.name_ru, n.lat, n.lon, n.is_active
FROM neighborhoods n
JOIN cities c ON c.id = n.city_id
WHERE n.is_active = TRUE
ORDER BY c.id ASC, n.name_he ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list neighborhoods: %w", err)
	}
	defer rows.Close()

	var records []NeighborhoodRecord
	for rows.Next() {
		var n NeighborhoodRecord
		if err := rows.Scan(&n.ID, &n.CityID, &n.Slug, &n.NameHe, &n.NameRu,
			&n.CityHe, &n.CityRu, &n.Lat, &n.Lon, &n.IsActive); err != nil {
			return nil, fmt.Errorf("scan neighborhood row: %w", err)
		}
		records = append(records, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighborhood rows: %w", err)
	}

	return records, nil
}

func (r *LookupRepo) ListNeighborhoodPoints(ctx context.Context) ([]NeighborhoodPoint, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name_he, name_ru, lat, lon
FROM neighborhoods
WHERE is_active = TRUE AND lat IS NOT NULL AND lon IS NOT NULL
`)
	if err != nil {
		return nil, fmt.Errorf("list neighborhood points: %w", err)
	}
	defer rows.Close()

	var points []NeighborhoodPoint
	for rows.Next() {
		var p NeighborhoodPoint
		if err := rows.Scan(&p.ID, &p.NameHe, &p.NameRu, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("scan neighborhood point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighborhood points: %w", err)
	}

	return points, nil
}
