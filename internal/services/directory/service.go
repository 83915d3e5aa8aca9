package directory

import (
	"context"
	"errors"
	"fmt"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/services/media"
)

var ErrNotFound = errors.New("not found")

type BusinessStore interface {
	List(ctx context.Context, filter pgrepo.BusinessFilter) ([]pgrepo.BusinessRecord, error)
	GetPublicBySlug(ctx context.Context, slug string) (pgrepo.BusinessRecord, error)
}

type LookupStore interface {
	ListCategories(ctx context.Context) ([]pgrepo.CategoryRecord, error)
	ListSubcategories(ctx context.Context, categoryID int64) ([]pgrepo.SubcategoryRecord, error)
	ListNeighborhoods(ctx context.Context) ([]pgrepo.NeighborhoodRecord, error)
}

type ReviewStore interface {
	ListApprovedByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]pgrepo.ReviewRecord, error)
}

type PhotoLister interface {
	ListPhotos(ctx context.Context, businessID int64) ([]media.Photo, error)
}

type ListInput struct {
	CategoryID       int64
	CategorySlug     string
	SubcategoryID    int64
	SubcategorySlug  string
	NeighborhoodID   int64
	NeighborhoodSlug string
	CityID           int64
	CitySlug         string
	Query            string
	Page             int
	PageSize         int
}

type Detail struct {
	Business pgrepo.BusinessRecord
	Photos   []media.Photo
	Reviews  []pgrepo.ReviewRecord
}

type CategoryWithSubs struct {
	Category      pgrepo.CategoryRecord
	Subcategories []pgrepo.SubcategoryRecord
}

// Service serves the public directory: approved, visible listings only.
type Service struct {
	businesses  BusinessStore
	lookups     LookupStore
	reviews     ReviewStore
	photos      PhotoLister
	pageSize    int
	maxPageSize int
}

func NewService(businesses BusinessStore, lookups LookupStore, reviews ReviewStore, photos PhotoLister, pageSize, maxPageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}

	return &Service{
		businesses:  businesses,
		lookups:     lookups,
		reviews:     reviews,
		photos:      photos,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

func (s *Service) ListBusinesses(ctx context.Context, in ListInput) ([]pgrepo.BusinessRecord, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	records, err := s.businesses.List(ctx, pgrepo.BusinessFilter{
		CategoryID:       in.CategoryID,
		CategorySlug:     in.CategorySlug,
		SubcategoryID:    in.SubcategoryID,
		SubcategorySlug:  in.SubcategorySlug,
		NeighborhoodID:   in.NeighborhoodID,
		NeighborhoodSlug: in.NeighborhoodSlug,
		CityID:           in.CityID,
		CitySlug:         in.CitySlug,
		Query:            in.Query,
		Limit:            size,
		Offset:           (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	return records, nil
}

func (s *Service) GetDetail(ctx context.Context, slug string) (Detail, error) {
	business, err := s.businesses.GetPublicBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, fmt.Errorf("load business: %w", err)
	}

	detail := Detail{Business: business}

	if s.photos != nil {
		photos, err := s.photos.ListPhotos(ctx, business.ID)
		if err != nil {
			return Detail{}, fmt.Errorf("load photos: %w", err)
		}
		detail.Photos = photos
	}

	if s.reviews != nil {
		reviews, err := s.reviews.ListApprovedByBusiness(ctx, business.ID, 50, 0)
		if err != nil {
			return Detail{}, fmt.Errorf("load reviews: %w", err)
		}
		detail.Reviews = reviews
	}

	return detail, nil
}

func (s *Service) Categories(ctx context.Context) ([]CategoryWithSubs, error) {
	categories, err := s.lookups.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	subcategories, err := s.lookups.ListSubcategories(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}

	byCategory := make(map[int64][]pgrepo.SubcategoryRecord, len(categories))
	for _, sub := range subcategories {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}

	out := make([]CategoryWithSubs, 0, len(categories))
	for _, category := range categories {
		out = append(out, CategoryWithSubs{
			Category:      category,
			Subcategories: byCategory[category.ID],
		})
	}

	return out, nil
}

func (s *Service) Neighborhoods(ctx context.Context) ([]pgrepo.NeighborhoodRecord, error) {
	neighborhoods, err := s.lookups.ListNeighborhoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list neighborhoods: %w", err)
	}
	return neighborhoods, nil
}
