package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/domain/enums"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/domain/rules"
	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already decided")
	ErrForbidden  = errors.New("forbidden")
)

// slugAttempts bounds the collision retry loop. Netanya does not have twenty
// businesses slugifying to the same name.
const slugAttempts = 20

type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type SubmissionStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.PendingBusinessRecord, error)
	ListByStatus(ctx context.Context, status enums.PendingStatus, limit, offset int) ([]pgrepo.PendingBusinessRecord, error)
	CountPending(ctx context.Context) (int, error)
	MarkApprovedTx(ctx context.Context, tx pgx.Tx, id, adminID int64) error
	MarkRejected(ctx context.Context, id, adminID int64) error
	DeleteRejected(ctx context.Context, id int64) error
}

type EditStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.PendingEditRecord, error)
	ListByStatus(ctx context.Context, status enums.PendingStatus, limit, offset int) ([]pgrepo.PendingEditRecord, error)
	MarkApprovedTx(ctx context.Context, tx pgx.Tx, id, adminID int64) error
	MarkRejected(ctx context.Context, id, adminID int64) error
	DeleteRejected(ctx context.Context, id int64) error
}

type BusinessStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, in pgrepo.BusinessInsert) (int64, error)
	GetByID(ctx context.Context, id int64) (pgrepo.BusinessRecord, error)
	UpdateFields(ctx context.Context, id int64, patch pgrepo.BusinessPatch) error
	UpdateFieldsTx(ctx context.Context, tx pgx.Tx, id int64, patch pgrepo.BusinessPatch) error
	SoftDelete(ctx context.Context, id int64) error
}

type LookupStore interface {
	GetCategory(ctx context.Context, id int64) (pgrepo.CategoryRecord, error)
	GetSubcategory(ctx context.Context, id int64) (pgrepo.SubcategoryRecord, error)
	GetNeighborhood(ctx context.Context, id int64) (pgrepo.NeighborhoodRecord, error)
}

type OwnerStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.OwnerRecord, error)
}

type EventSink interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventInsert) (int, error)
}

type PageInvalidator interface {
	InvalidatePages(ctx context.Context, prefix string) (int, error)
}

type Service struct {
	tx             TxRunner
	submissions    SubmissionStore
	edits          EditStore
	businesses     BusinessStore
	lookups        LookupStore
	owners         OwnerStore
	events         EventSink
	pages          PageInvalidator
	approveVisible bool
	logger         *zap.Logger
}

func NewService(
	tx TxRunner,
	submissions SubmissionStore,
	edits EditStore,
	businesses BusinessStore,
	lookups LookupStore,
	owners OwnerStore,
	events EventSink,
	pages PageInvalidator,
	approveVisible bool,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		tx:             tx,
		submissions:    submissions,
		edits:          edits,
		businesses:     businesses,
		lookups:        lookups,
		owners:         owners,
		events:         events,
		pages:          pages,
		approveVisible: approveVisible,
		logger:         logger,
	}
}

func (s *Service) PendingSubmissions(ctx context.Context, limit, offset int) ([]pgrepo.PendingBusinessRecord, error) {
	return s.submissions.ListByStatus(ctx, enums.PendingStatusPending, limit, offset)
}

func (s *Service) PendingEdits(ctx context.Context, limit, offset int) ([]pgrepo.PendingEditRecord, error) {
	return s.edits.ListByStatus(ctx, enums.PendingStatusPending, limit, offset)
}

func (s *Service) CountPendingSubmissions(ctx context.Context) (int, error) {
	return s.submissions.CountPending(ctx)
}

// ApproveSubmission turns a pending submission into a live business. The
// business insert and the status flip commit together, so a crash in between
// leaves the submission pending rather than lost or duplicated.
func (s *Service) ApproveSubmission(ctx context.Context, adminID, submissionID int64) (int64, error) {
	if adminID <= 0 {
		return 0, ErrForbidden
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("load submission: %w", err)
	}
	if submission.Status != string(enums.PendingStatusPending) {
		return 0, ErrConflict
	}

	neighborhood, err := s.resolveReferences(ctx, submission.CategoryID, submission.SubcategoryID, submission.NeighborhoodID)
	if err != nil {
		return 0, err
	}

	baseSlug := rules.SlugFromNames(submission.NameHe, submission.NameRu)
	if baseSlug == "" {
		baseSlug = "business"
	}

	var businessID int64
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		insert := pgrepo.BusinessInsert{
			NameHe:         submission.NameHe,
			NameRu:         submission.NameRu,
			DescriptionHe:  submission.DescriptionHe,
			DescriptionRu:  submission.DescriptionRu,
			AddressHe:      submission.AddressHe,
			AddressRu:      submission.AddressRu,
			OpeningHoursHe: submission.OpeningHoursHe,
			OpeningHoursRu: submission.OpeningHoursRu,
			Phone:          submission.Phone,
			Whatsapp:       submission.Whatsapp,
			Website:        submission.Website,
			Email:          submission.Email,
			SubmitterEmail: submission.SubmitterEmail,
			CategoryID:     submission.CategoryID,
			SubcategoryID:  submission.SubcategoryID,
			NeighborhoodID: submission.NeighborhoodID,
			CityID:         neighborhood.CityID,
			IsVisible:      s.approveVisible,
		}

		id, err := s.createWithSlug(ctx, tx, insert, baseSlug)
		if err != nil {
			return err
		}
		businessID = id

		if err := s.submissions.MarkApprovedTx(ctx, tx, submissionID, adminID); err != nil {
			if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
				return ErrConflict
			}
			return fmt.Errorf("mark submission approved: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.afterDecision(ctx, "submission.approved", map[string]any{
		"pending_business_id": submissionID,
		"business_id":         businessID,
		"admin_id":            adminID,
	})

	return businessID, nil
}

func (s *Service) RejectSubmission(ctx context.Context, adminID, submissionID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}

	if err := s.markSubmissionRejected(ctx, adminID, submissionID); err != nil {
		return err
	}

	s.afterDecision(ctx, "submission.rejected", map[string]any{
		"pending_business_id": submissionID,
		"admin_id":            adminID,
	})

	return nil
}

func (s *Service) markSubmissionRejected(ctx context.Context, adminID, submissionID int64) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load submission: %w", err)
	}
	if submission.Status != string(enums.PendingStatusPending) {
		return ErrConflict
	}

	if err := s.submissions.MarkRejected(ctx, submissionID, adminID); err != nil {
		if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
			return ErrConflict
		}
		return fmt.Errorf("mark submission rejected: %w", err)
	}

	return nil
}

// DiscardSubmissionAsAdmin removes a rejected submission from the queue.
func (s *Service) DiscardSubmissionAsAdmin(ctx context.Context, adminID, submissionID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}
	return s.discardSubmission(ctx, submissionID)
}

// DiscardSubmissionAsOwner lets an owner clean up their own rejected
// submission, matched by submitter email.
func (s *Service) DiscardSubmissionAsOwner(ctx context.Context, ownerID, submissionID int64) error {
	if ownerID <= 0 {
		return ErrForbidden
	}

	owner, err := s.owners.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrOwnerNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("load owner: %w", err)
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load submission: %w", err)
	}
	if submission.SubmitterEmail == nil || !strings.EqualFold(*submission.SubmitterEmail, owner.Email) {
		return ErrForbidden
	}

	return s.discardSubmission(ctx, submissionID)
}

func (s *Service) discardSubmission(ctx context.Context, submissionID int64) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load submission: %w", err)
	}
	if submission.Status != string(enums.PendingStatusRejected) {
		return ErrConflict
	}

	if err := s.submissions.DeleteRejected(ctx, submissionID); err != nil {
		if errors.Is(err, pgrepo.ErrPendingBusinessNotFound) {
			return ErrConflict
		}
		return fmt.Errorf("discard submission: %w", err)
	}

	return nil
}

// ApproveEdit merges the diff into the business and closes the edit in one
// transaction. Fields absent from the diff keep their current values.
func (s *Service) ApproveEdit(ctx context.Context, adminID, editID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}

	edit, err := s.edits.GetByID(ctx, editID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load edit: %w", err)
	}
	if edit.Status != string(enums.PendingStatusPending) {
		return ErrConflict
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		patch := pgrepo.BusinessPatch{
			NameHe:         edit.NameHe,
			NameRu:         edit.NameRu,
			DescriptionHe:  edit.DescriptionHe,
			DescriptionRu:  edit.DescriptionRu,
			AddressHe:      edit.AddressHe,
			AddressRu:      edit.AddressRu,
			OpeningHoursHe: edit.OpeningHoursHe,
			OpeningHoursRu: edit.OpeningHoursRu,
			Phone:          edit.Phone,
			Whatsapp:       edit.Whatsapp,
			Website:        edit.Website,
			Email:          edit.Email,
		}

		if err := s.businesses.UpdateFieldsTx(ctx, tx, edit.BusinessID, patch); err != nil {
			if errors.Is(err, pgrepo.ErrBusinessNotFound) {
				return ErrConflict
			}
			return fmt.Errorf("apply edit: %w", err)
		}

		if err := s.edits.MarkApprovedTx(ctx, tx, editID, adminID); err != nil {
			if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
				return ErrConflict
			}
			return fmt.Errorf("mark edit approved: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.afterDecision(ctx, "edit.approved", map[string]any{
		"pending_edit_id": editID,
		"business_id":     edit.BusinessID,
		"admin_id":        adminID,
	})

	return nil
}

func (s *Service) RejectEdit(ctx context.Context, adminID, editID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}

	edit, err := s.edits.GetByID(ctx, editID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load edit: %w", err)
	}
	if edit.Status != string(enums.PendingStatusPending) {
		return ErrConflict
	}

	if err := s.edits.MarkRejected(ctx, editID, adminID); err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrConflict
		}
		return fmt.Errorf("mark edit rejected: %w", err)
	}

	s.afterDecision(ctx, "edit.rejected", map[string]any{
		"pending_edit_id": editID,
		"business_id":     edit.BusinessID,
		"admin_id":        adminID,
	})

	return nil
}

// DismissEdit lets the owner of the business clear a rejected edit so a new
// one can be drafted.
func (s *Service) DismissEdit(ctx context.Context, ownerID, editID int64) error {
	if ownerID <= 0 {
		return ErrForbidden
	}

	edit, err := s.edits.GetByID(ctx, editID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load edit: %w", err)
	}

	business, err := s.businesses.GetByID(ctx, edit.BusinessID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("load business: %w", err)
	}
	if business.OwnerID == nil || *business.OwnerID != ownerID {
		return ErrForbidden
	}

	if edit.Status != string(enums.PendingStatusRejected) {
		return ErrConflict
	}

	if err := s.edits.DeleteRejected(ctx, editID); err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrConflict
		}
		return fmt.Errorf("dismiss edit: %w", err)
	}

	return nil
}

// DismissEditAsAdmin clears a rejected edit regardless of who owns the
// business.
func (s *Service) DismissEditAsAdmin(ctx context.Context, adminID, editID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}

	edit, err := s.edits.GetByID(ctx, editID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load edit: %w", err)
	}
	if edit.Status != string(enums.PendingStatusRejected) {
		return ErrConflict
	}

	if err := s.edits.DeleteRejected(ctx, editID); err != nil {
		if errors.Is(err, pgrepo.ErrPendingEditNotFound) {
			return ErrConflict
		}
		return fmt.Errorf("dismiss edit: %w", err)
	}

	return nil
}

type CreateBusinessInput struct {
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
	CategoryID     int64
	SubcategoryID  *int64
	NeighborhoodID int64
	IsVisible      bool
}

// CreateBusiness inserts a listing directly, bypassing the submission queue.
// For admin-curated seed data and phone-in listings.
func (s *Service) CreateBusiness(ctx context.Context, adminID int64, in CreateBusinessInput) (int64, error) {
	if adminID <= 0 {
		return 0, ErrForbidden
	}
	if strings.TrimSpace(in.NameHe) == "" && strings.TrimSpace(in.NameRu) == "" {
		return 0, fmt.Errorf("name required: %w", ErrValidation)
	}
	if in.CategoryID <= 0 || in.NeighborhoodID <= 0 {
		return 0, fmt.Errorf("category and neighborhood required: %w", ErrValidation)
	}

	neighborhood, err := s.resolveReferences(ctx, in.CategoryID, in.SubcategoryID, in.NeighborhoodID)
	if err != nil {
		return 0, err
	}

	baseSlug := rules.SlugFromNames(in.NameHe, in.NameRu)
	if baseSlug == "" {
		baseSlug = "business"
	}

	var businessID int64
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		insert := pgrepo.BusinessInsert{
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
			CategoryID:     in.CategoryID,
			SubcategoryID:  in.SubcategoryID,
			NeighborhoodID: in.NeighborhoodID,
			CityID:         neighborhood.CityID,
			IsVisible:      in.IsVisible,
		}

		id, err := s.createWithSlug(ctx, tx, insert, baseSlug)
		if err != nil {
			return err
		}
		businessID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.afterDecision(ctx, "business.created", map[string]any{
		"business_id": businessID,
		"admin_id":    adminID,
	})

	return businessID, nil
}

// UpdateBusiness applies an admin patch directly, bypassing the edit queue.
func (s *Service) UpdateBusiness(ctx context.Context, adminID, businessID int64, patch pgrepo.BusinessPatch) error {
	if adminID <= 0 {
		return ErrForbidden
	}

	if err := s.businesses.UpdateFields(ctx, businessID, patch); err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update business: %w", err)
	}

	s.afterDecision(ctx, "business.updated", map[string]any{
		"business_id": businessID,
		"admin_id":    adminID,
	})

	return nil
}

// RemoveBusiness hides a listing from the public directory. The row stays for
// audit and possible restore.
func (s *Service) RemoveBusiness(ctx context.Context, adminID, businessID int64) error {
	if adminID <= 0 {
		return ErrForbidden
	}

	if err := s.businesses.SoftDelete(ctx, businessID); err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("remove business: %w", err)
	}

	s.afterDecision(ctx, "business.removed", map[string]any{
		"business_id": businessID,
		"admin_id":    adminID,
	})

	return nil
}

// resolveReferences re-checks the classification at decision time. A category,
// subcategory, or neighborhood can be deactivated or re-parented while the row
// waits in the queue, and a business must never be created against a stale
// reference.
func (s *Service) resolveReferences(ctx context.Context, categoryID int64, subcategoryID *int64, neighborhoodID int64) (pgrepo.NeighborhoodRecord, error) {
	category, err := s.lookups.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCategoryNotFound) {
			return pgrepo.NeighborhoodRecord{}, fmt.Errorf("unknown category: %w", ErrValidation)
		}
		return pgrepo.NeighborhoodRecord{}, fmt.Errorf("resolve category: %w", err)
	}

	if subcategoryID != nil {
		subcategory, err := s.lookups.GetSubcategory(ctx, *subcategoryID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSubcategoryNotFound) {
				return pgrepo.NeighborhoodRecord{}, fmt.Errorf("unknown subcategory: %w", ErrValidation)
			}
			return pgrepo.NeighborhoodRecord{}, fmt.Errorf("resolve subcategory: %w", err)
		}
		if subcategory.CategoryID != category.ID {
			return pgrepo.NeighborhoodRecord{}, fmt.Errorf("subcategory does not belong to category: %w", ErrValidation)
		}
	}

	neighborhood, err := s.lookups.GetNeighborhood(ctx, neighborhoodID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNeighborhoodNotFound) {
			return pgrepo.NeighborhoodRecord{}, fmt.Errorf("unknown neighborhood: %w", ErrValidation)
		}
		return pgrepo.NeighborhoodRecord{}, fmt.Errorf("resolve neighborhood: %w", err)
	}

	return neighborhood, nil
}

func (s *Service) createWithSlug(ctx context.Context, tx pgx.Tx, insert pgrepo.BusinessInsert, baseSlug string) (int64, error) {
	for attempt := 1; attempt <= slugAttempts; attempt++ {
		insert.Slug = baseSlug
		if attempt > 1 {
			insert.Slug = baseSlug + "-" + strconv.Itoa(attempt)
		}

		id, err := s.businesses.CreateTx(ctx, tx, insert)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgrepo.ErrSlugTaken) {
			return 0, fmt.Errorf("create business: %w", err)
		}
	}

	return 0, fmt.Errorf("no free slug for %q after %d attempts", baseSlug, slugAttempts)
}

// afterDecision runs the best-effort side effects: audit event and page cache
// invalidation. Failures are logged, never returned.
func (s *Service) afterDecision(ctx context.Context, event string, payload map[string]any) {
	if s.events != nil {
		if _, err := s.events.InsertBatch(ctx, []pgrepo.EventInsert{{Name: event, Payload: payload}}); err != nil {
			s.logger.Warn("audit event failed", zap.String("event", event), zap.Error(err))
		}
	}
	if s.pages != nil {
		if _, err := s.pages.InvalidatePages(ctx, ""); err != nil {
			s.logger.Warn("page invalidation failed", zap.String("event", event), zap.Error(err))
		}
	}
}
