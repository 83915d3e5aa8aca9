package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type ReviewStore interface {
	Create(ctx context.Context, in pgrepo.ReviewInsert) (int64, error)
	GetByID(ctx context.Context, id int64) (pgrepo.ReviewRecord, error)
	ListApprovedByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]pgrepo.ReviewRecord, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	SetFlagged(ctx context.Context, id int64, flagged bool) error
	Delete(ctx context.Context, id int64) error
}

type BusinessStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.BusinessRecord, error)
	GetPublicBySlug(ctx context.Context, slug string) (pgrepo.BusinessRecord, error)
}

type EventSink interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventInsert) (int, error)
}

type CreateInput struct {
	BusinessID int64
	Rating     int
	AuthorName string
	CommentHe  *string
	CommentRu  *string
}

type Service struct {
	reviews    ReviewStore
	businesses BusinessStore
	events     EventSink
	logger     *zap.Logger
}

func NewService(reviews ReviewStore, businesses BusinessStore, events EventSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		reviews:    reviews,
		businesses: businesses,
		events:     events,
		logger:     logger,
	}
}

// Create queues an anonymous review for admin approval. It never appears
// publicly until an admin approves it.
func (s *Service) Create(ctx context.Context, in CreateInput) (int64, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5: %w", ErrValidation)
	}
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if in.AuthorName == "" {
		return 0, fmt.Errorf("author name is required: %w", ErrValidation)
	}

	business, err := s.businesses.GetByID(ctx, in.BusinessID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("load business: %w", err)
	}
	if !business.IsVisible {
		return 0, ErrNotFound
	}

	id, err := s.reviews.Create(ctx, pgrepo.ReviewInsert{
		BusinessID: in.BusinessID,
		Rating:     in.Rating,
		AuthorName: in.AuthorName,
		CommentHe:  in.CommentHe,
		CommentRu:  in.CommentRu,
	})
	if err != nil {
		return 0, fmt.Errorf("create review: %w", err)
	}

	s.emit(ctx, "review.created", map[string]any{"review_id": id, "business_id": in.BusinessID})

	return id, nil
}

// CreateForSlug resolves the public business URL form before queueing the
// review.
func (s *Service) CreateForSlug(ctx context.Context, slug string, in CreateInput) (int64, error) {
	businessID, err := s.resolveSlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	in.BusinessID = businessID
	return s.Create(ctx, in)
}

func (s *Service) ListApprovedBySlug(ctx context.Context, slug string, limit, offset int) ([]pgrepo.ReviewRecord, error) {
	businessID, err := s.resolveSlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.ListApproved(ctx, businessID, limit, offset)
}

func (s *Service) resolveSlug(ctx context.Context, slug string) (int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, fmt.Errorf("business slug is required: %w", ErrValidation)
	}

	business, err := s.businesses.GetPublicBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("resolve business slug: %w", err)
	}

	return business.ID, nil
}

func (s *Service) ListApproved(ctx context.Context, businessID int64, limit, offset int) ([]pgrepo.ReviewRecord, error) {
	if businessID <= 0 {
		return nil, ErrValidation
	}
	return s.reviews.ListApprovedByBusiness(ctx, businessID, limit, offset)
}

func (s *Service) SetApproved(ctx context.Context, adminID, reviewID int64, approved bool) error {
	if adminID <= 0 {
		return ErrForbidden
	}
	if err := s.reviews.SetApproved(ctx, reviewID, approved); err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set review approved: %w", err)
	}
	return nil
}

func (s *Service) SetFlagged(ctx context.Context, adminID, reviewID int64, flagged bool) error {
	if adminID <= 0 {
		return ErrForbidden
	}
	if err := s.reviews.SetFlagged(ctx, reviewID, flagged); err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set review flagged: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, adminID, reviewID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, name string, payload map[string]any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.InsertBatch(ctx, []pgrepo.EventInsert{{Name: name, Payload: payload}}); err != nil {
		s.logger.Warn("emit event failed", zap.String("event", name), zap.Error(err))
	}
}
