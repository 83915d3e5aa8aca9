package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/pkg/validate"
	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

type PendingStore interface {
	Create(ctx context.Context, in pgrepo.PendingBusinessInsert) (int64, error)
}

type EditStore interface {
	Upsert(ctx context.Context, in pgrepo.PendingEditInsert) (int64, error)
}

type BusinessStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.BusinessRecord, error)
}

type LookupStore interface {
	GetCategory(ctx context.Context, id int64) (pgrepo.CategoryRecord, error)
	GetSubcategory(ctx context.Context, id int64) (pgrepo.SubcategoryRecord, error)
	GetNeighborhood(ctx context.Context, id int64) (pgrepo.NeighborhoodRecord, error)
}

type EventSink interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventInsert) (int, error)
}

type SubmissionInput struct {
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

// EditInput is a diff: nil means "leave as is".
type EditInput struct {
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

type Service struct {
	pending    PendingStore
	edits      EditStore
	businesses BusinessStore
	lookups    LookupStore
	events     EventSink
	logger     *zap.Logger
}

func NewService(pending PendingStore, edits EditStore, businesses BusinessStore, lookups LookupStore, events EventSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		pending:    pending,
		edits:      edits,
		businesses: businesses,
		lookups:    lookups,
		events:     events,
		logger:     logger,
	}
}

// SubmitBusiness validates an anonymous submission and queues it for
// moderation. Nothing becomes public here.
func (s *Service) SubmitBusiness(ctx context.Context, in SubmissionInput) (int64, error) {
	in.NameHe = strings.TrimSpace(in.NameHe)
	in.NameRu = strings.TrimSpace(in.NameRu)

	if in.NameHe == "" && in.NameRu == "" {
		return 0, fmt.Errorf("at least one name is required: %w", ErrValidation)
	}
	if emptyPtr(in.Phone) && emptyPtr(in.Whatsapp) {
		return 0, fmt.Errorf("phone or whatsapp is required: %w", ErrValidation)
	}
	if !emptyPtr(in.Email) && !validate.Email(*in.Email) {
		return 0, fmt.Errorf("invalid contact email: %w", ErrValidation)
	}
	if !emptyPtr(in.SubmitterEmail) && !validate.Email(*in.SubmitterEmail) {
		return 0, fmt.Errorf("invalid submitter email: %w", ErrValidation)
	}

	if err := s.resolveClassification(ctx, in.CategoryID, in.SubcategoryID, in.NeighborhoodID); err != nil {
		return 0, err
	}

	id, err := s.pending.Create(ctx, pgrepo.PendingBusinessInsert{
		NameHe:         in.NameHe,
		NameRu:         in.NameRu,
		DescriptionHe:  in.DescriptionHe,
		DescriptionRu:  in.DescriptionRu,
		AddressHe:      in.AddressHe,
		AddressRu:      in.AddressRu,
		OpeningHoursHe: in.OpeningHoursHe,
		OpeningHoursRu: in.OpeningHoursRu,
		Phone:          in.Phone,
		Whatsapp:       in.Whatsapp,
		Website:        in.Website,
		Email:          in.Email,
		SubmitterEmail: lowerPtr(in.SubmitterEmail),
		CategoryID:     in.CategoryID,
		SubcategoryID:  in.SubcategoryID,
		NeighborhoodID: in.NeighborhoodID,
	})
	if err != nil {
		return 0, fmt.Errorf("queue submission: %w", err)
	}

	s.emit(ctx, "submission.created", map[string]any{"pending_business_id": id})

	return id, nil
}

// SubmitEdit queues a partial edit against a live business. Only the linked
// owner may edit; a second open edit supersedes the first.
func (s *Service) SubmitEdit(ctx context.Context, ownerID, businessID int64, in EditInput) (int64, error) {
	if ownerID <= 0 {
		return 0, ErrForbidden
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("load business: %w", err)
	}
	if business.OwnerID == nil || *business.OwnerID != ownerID {
		return 0, ErrForbidden
	}

	if isEmptyDiff(in) {
		return 0, fmt.Errorf("empty edit: %w", ErrValidation)
	}

	mergedNameHe := mergeField(in.NameHe, business.NameHe)
	mergedNameRu := mergeField(in.NameRu, business.NameRu)
	if strings.TrimSpace(mergedNameHe) == "" && strings.TrimSpace(mergedNameRu) == "" {
		return 0, fmt.Errorf("edit would clear both names: %w", ErrValidation)
	}

	mergedPhone := mergeOptional(in.Phone, business.Phone)
	mergedWhatsapp := mergeOptional(in.Whatsapp, business.Whatsapp)
	if mergedPhone == "" && mergedWhatsapp == "" {
		return 0, fmt.Errorf("edit would clear phone and whatsapp: %w", ErrValidation)
	}

	if in.Email != nil && *in.Email != "" && !validate.Email(*in.Email) {
		return 0, fmt.Errorf("invalid contact email: %w", ErrValidation)
	}

	id, err := s.edits.Upsert(ctx, pgrepo.PendingEditInsert{
		BusinessID:     businessID,
		NameHe:         in.NameHe,
		NameRu:         in.NameRu,
		DescriptionHe:  in.DescriptionHe,
		DescriptionRu:  in.DescriptionRu,
		AddressHe:      in.AddressHe,
		AddressRu:      in.AddressRu,
		OpeningHoursHe: in.OpeningHoursHe,
		OpeningHoursRu: in.OpeningHoursRu,
		Phone:          in.Phone,
		Whatsapp:       in.Whatsapp,
		Website:        in.Website,
		Email:          in.Email,
	})
	if err != nil {
		return 0, fmt.Errorf("queue edit: %w", err)
	}

	s.emit(ctx, "edit.created", map[string]any{
		"pending_edit_id": id,
		"business_id":     businessID,
		"owner_id":        ownerID,
	})

	return id, nil
}

func (s *Service) resolveClassification(ctx context.Context, categoryID int64, subcategoryID *int64, neighborhoodID int64) error {
	category, err := s.lookups.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCategoryNotFound) {
			return fmt.Errorf("unknown category: %w", ErrValidation)
		}
		return fmt.Errorf("resolve category: %w", err)
	}

	if subcategoryID != nil {
		subcategory, err := s.lookups.GetSubcategory(ctx, *subcategoryID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSubcategoryNotFound) {
				return fmt.Errorf("unknown subcategory: %w", ErrValidation)
			}
			return fmt.Errorf("resolve subcategory: %w", err)
		}
		if subcategory.CategoryID != category.ID {
			return fmt.Errorf("subcategory does not belong to category: %w", ErrValidation)
		}
	}

	if _, err := s.lookups.GetNeighborhood(ctx, neighborhoodID); err != nil {
		if errors.Is(err, pgrepo.ErrNeighborhoodNotFound) {
			return fmt.Errorf("unknown neighborhood: %w", ErrValidation)
		}
		return fmt.Errorf("resolve neighborhood: %w", err)
	}

	return nil
}

// emit is best effort: losing an analytics event never fails the request.
func (s *Service) emit(ctx context.Context, name string, payload map[string]any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.InsertBatch(ctx, []pgrepo.EventInsert{{Name: name, Payload: payload}}); err != nil {
		s.logger.Warn("emit event failed", zap.String("event", name), zap.Error(err))
	}
}

func isEmptyDiff(in EditInput) bool {
	return in.NameHe == nil && in.NameRu == nil &&
		in.DescriptionHe == nil && in.DescriptionRu == nil &&
		in.AddressHe == nil && in.AddressRu == nil &&
		in.OpeningHoursHe == nil && in.OpeningHoursRu == nil &&
		in.Phone == nil && in.Whatsapp == nil &&
		in.Website == nil && in.Email == nil
}

func emptyPtr(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

func lowerPtr(v *string) *string {
	if v == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*v))
	if lowered == "" {
		return nil
	}
	return &lowered
}

func mergeField(diff *string, current string) string {
	if diff != nil {
		return *diff
	}
	return current
}

func mergeOptional(diff *string, current *string) string {
	if diff != nil {
		return strings.TrimSpace(*diff)
	}
	if current != nil {
		return strings.TrimSpace(*current)
	}
	return ""
}
