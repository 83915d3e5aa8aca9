package owners

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

type BusinessStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.BusinessRecord, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]pgrepo.BusinessRecord, error)
	LinkOwnersByEmail(ctx context.Context) (int64, error)
}

type EditStore interface {
	GetLatestByBusiness(ctx context.Context, businessID int64) (pgrepo.PendingEditRecord, error)
}

// Service covers the owner portal reads plus the out-of-band ownership
// linkage pass.
type Service struct {
	businesses BusinessStore
	edits      EditStore
	logger     *zap.Logger
}

func NewService(businesses BusinessStore, edits EditStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		businesses: businesses,
		edits:      edits,
		logger:     logger,
	}
}

func (s *Service) ListMine(ctx context.Context, ownerID int64) ([]pgrepo.BusinessRecord, error) {
	if ownerID <= 0 {
		return nil, ErrForbidden
	}

	records, err := s.businesses.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned businesses: %w", err)
	}

	return records, nil
}

// LatestEdit returns the newest edit of an owned business, whatever its
// status, so the portal can show "pending review" or "rejected" state.
func (s *Service) LatestEdit(ctx context.Context, ownerID, businessID int64) (pgrepo.PendingEditRecord, error) {
	if ownerID <= 0 {
		return pgrepo.PendingEditRecord{}, ErrForbidden
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return pgrepo.PendingEditRecord{}, ErrNotFound
		}
		return pgrepo.PendingEditRecord{}, fmt.Errorf("load business: %w", err)
	}
	if business.OwnerID == nil || *business.OwnerID != ownerID {
		return pgrepo.PendingEditRecord{}, ErrForbidden
	}

	edit, err := s.edits.GetLatestByBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return pgrepo.PendingEditRecord{}, ErrNotFound
		}
		return pgrepo.PendingEditRecord{}, fmt.Errorf("load latest edit: %w", err)
	}

	return edit, nil
}

// LinkByEmail attaches unowned businesses to registered owners by submitter
// email. Owner emails are unique, so repeated runs are idempotent.
func (s *Service) LinkByEmail(ctx context.Context) (int64, error) {
	linked, err := s.businesses.LinkOwnersByEmail(ctx)
	if err != nil {
		return 0, fmt.Errorf("link owners by email: %w", err)
	}
	if linked > 0 {
		s.logger.Info("linked businesses to owners", zap.Int64("count", linked))
	}

	return linked, nil
}
