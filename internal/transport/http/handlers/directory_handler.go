package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	redrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/redis"
	dirsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/directory"
	geosvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/geo"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/services/media"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/dto"
	httperrors "github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/errors"
)

const pageCacheTTL = 60 * time.Second

type DirectoryHandler struct {
	service *dirsvc.Service
	geo     *geosvc.Service
	cache   *redrepo.CacheRepo
	logger  *zap.Logger
}

func NewDirectoryHandler(service *dirsvc.Service, geo *geosvc.Service, cache *redrepo.CacheRepo, logger *zap.Logger) *DirectoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DirectoryHandler{
		service: service,
		geo:     geo,
		cache:   cache,
		logger:  logger,
	}
}

func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}

	cacheKey := "businesses:" + r.URL.RawQuery
	if h.serveCached(w, r, cacheKey) {
		return
	}

	records, err := h.service.ListBusinesses(r.Context(), dirsvc.ListInput{
		CategoryID:       int64Query(r, "category_id"),
		CategorySlug:     slugQuery(r, "category"),
		SubcategoryID:    int64Query(r, "subcategory_id"),
		SubcategorySlug:  slugQuery(r, "subcategory"),
		NeighborhoodID:   int64Query(r, "neighborhood_id"),
		NeighborhoodSlug: slugQuery(r, "neighborhood"),
		CityID:           int64Query(r, "city_id"),
		CitySlug:         slugQuery(r, "city"),
		Query:            strings.TrimSpace(r.URL.Query().Get("q")),
		Page:             intQuery(r, "page"),
		PageSize:         intQuery(r, "page_size"),
	})
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list businesses")
		return
	}

	items := make([]dto.BusinessResponse, 0, len(records))
	for _, record := range records {
		items = append(items, mapBusiness(record))
	}

	page := intQuery(r, "page")
	if page < 1 {
		page = 1
	}
	h.writeCached(w, r, cacheKey, http.StatusOK, dto.BusinessListResponse{
		Items:    items,
		Page:     page,
		PageSize: len(items),
	})
}

func (h *DirectoryHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "slug is required")
		return
	}

	detail, err := h.service.GetDetail(r.Context(), slug)
	if err != nil {
		if errors.Is(err, dirsvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "business not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load business")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BusinessDetailResponse{
		Business: mapBusiness(detail.Business),
		Photos:   mapPhotos(detail.Photos),
		Reviews:  mapReviews(detail.Reviews),
	})
}

func (h *DirectoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}

	const cacheKey = "categories"
	if h.serveCached(w, r, cacheKey) {
		return
	}

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list categories")
		return
	}

	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, entry := range categories {
		subs := make([]dto.SubcategoryResponse, 0, len(entry.Subcategories))
		for _, sub := range entry.Subcategories {
			subs = append(subs, dto.SubcategoryResponse{
				ID:     sub.ID,
				Slug:   sub.Slug,
				NameHe: sub.NameHe,
				NameRu: sub.NameRu,
			})
		}
		items = append(items, dto.CategoryResponse{
			ID:            entry.Category.ID,
			Slug:          entry.Category.Slug,
			NameHe:        entry.Category.NameHe,
			NameRu:        entry.Category.NameRu,
			Subcategories: subs,
		})
	}

	h.writeCached(w, r, cacheKey, http.StatusOK, dto.CategoriesResponse{Items: items})
}

func (h *DirectoryHandler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}

	const cacheKey = "neighborhoods"
	if h.serveCached(w, r, cacheKey) {
		return
	}

	neighborhoods, err := h.service.Neighborhoods(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list neighborhoods")
		return
	}

	items := make([]dto.NeighborhoodResponse, 0, len(neighborhoods))
	for _, n := range neighborhoods {
		items = append(items, dto.NeighborhoodResponse{
			ID:     n.ID,
			Slug:   n.Slug,
			NameHe: n.NameHe,
			NameRu: n.NameRu,
			CityHe: n.CityHe,
			CityRu: n.CityRu,
		})
	}

	h.writeCached(w, r, cacheKey, http.StatusOK, dto.NeighborhoodsResponse{Items: items})
}

func (h *DirectoryHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if h.geo == nil {
		writeInternal(w, "GEO_SERVICE_UNAVAILABLE", "geo service is unavailable")
		return
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "lat and lon are required")
		return
	}

	nearest, err := h.geo.NearestNeighborhood(r.Context(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, geosvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "coordinates out of range")
		case errors.Is(err, geosvc.ErrNoNeighborhoods):
			writeNotFound(w, "NOT_FOUND", "no neighborhoods configured")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to resolve neighborhood")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NearestNeighborhoodResponse{
		ID:         nearest.ID,
		NameHe:     nearest.NameHe,
		NameRu:     nearest.NameRu,
		DistanceKM: nearest.DistanceKM,
	})
}

// serveCached replays a cached page if present. Cache failures fall through
// to a live render.
func (h *DirectoryHandler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}

	data, ok, err := h.cache.GetPage(r.Context(), key)
	if err != nil {
		h.logger.Debug("page cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return true
}

func (h *DirectoryHandler) writeCached(w http.ResponseWriter, r *http.Request, key string, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to encode response")
		return
	}

	if h.cache != nil {
		if err := h.cache.SetPage(r.Context(), key, data, pageCacheTTL); err != nil {
			h.logger.Debug("page cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func mapBusiness(record pgrepo.BusinessRecord) dto.BusinessResponse {
	return dto.BusinessResponse{
		ID:             record.ID,
		Slug:           record.Slug,
		NameHe:         record.NameHe,
		NameRu:         record.NameRu,
		DescriptionHe:  record.DescriptionHe,
		DescriptionRu:  record.DescriptionRu,
		AddressHe:      record.AddressHe,
		AddressRu:      record.AddressRu,
		OpeningHoursHe: record.OpeningHoursHe,
		OpeningHoursRu: record.OpeningHoursRu,
		Phone:          record.Phone,
		Whatsapp:       record.Whatsapp,
		Website:        record.Website,
		Email:          record.Email,
		CategoryID:     record.CategoryID,
		SubcategoryID:  record.SubcategoryID,
		NeighborhoodID: record.NeighborhoodID,
		CityID:         record.CityID,
		IsVerified:     record.IsVerified,
		IsPinned:       record.IsPinned,
		CreatedAt:      record.CreatedAt,
	}
}

func mapPhotos(photos []media.Photo) []dto.PhotoResponse {
	out := make([]dto.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		out = append(out, dto.PhotoResponse{
			ID:       photo.ID,
			Position: photo.Position,
			URL:      photo.URL,
		})
	}
	return out
}

func mapReviews(reviews []pgrepo.ReviewRecord) []dto.ReviewResponse {
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, dto.ReviewResponse{
			ID:         review.ID,
			Rating:     review.Rating,
			AuthorName: review.AuthorName,
			CommentHe:  review.CommentHe,
			CommentRu:  review.CommentRu,
			CreatedAt:  review.CreatedAt,
		})
	}
	return out
}

func slugQuery(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

func int64Query(r *http.Request, name string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(name)), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func intQuery(r *http.Request, name string) int {
	return int(int64Query(r, name))
}
