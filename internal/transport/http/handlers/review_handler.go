package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/domain/enums"
	ratesvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/rate"
	reviewsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/reviews"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/dto"
	httperrors "github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/errors"
)

const reviewsPageLimit = 50

type ReviewHandler struct {
	service *reviewsvc.Service
	limiter *ratesvc.Limiter
}

func NewReviewHandler(service *reviewsvc.Service, limiter *ratesvc.Limiter) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		limiter: limiter,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid business slug")
		return
	}

	if retryAfter, allowed := allowRequest(r, h.limiter); !allowed {
		writeTooManyRequests(w, "RATE_LIMITED", "too many reviews, try again later", retryAfter)
		return
	}

	var req dto.ReviewCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	id, err := h.service.CreateForSlug(r.Context(), slug, reviewsvc.CreateInput{
		Rating:     req.Rating,
		AuthorName: req.AuthorName,
		CommentHe:  req.CommentHe,
		CommentRu:  req.CommentRu,
	})
	if err != nil {
		switch {
		case errors.Is(err, reviewsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid review")
		case errors.Is(err, reviewsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "business not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create review")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReviewCreatedResponse{
		ID:     id,
		Status: string(enums.PendingStatusPending),
	})
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid business slug")
		return
	}

	offset := intQuery(r, "offset")
	reviews, err := h.service.ListApprovedBySlug(r.Context(), slug, reviewsPageLimit, offset)
	if err != nil {
		switch {
		case errors.Is(err, reviewsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid business slug")
		case errors.Is(err, reviewsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "business not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to list reviews")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReviewsResponse{Items: mapReviews(reviews)})
}
