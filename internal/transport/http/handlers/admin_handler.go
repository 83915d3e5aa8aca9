package handlers

import (
	"errors"
	"net/http"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	authsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/auth"
	modsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/moderation"
	reviewsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/reviews"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/dto"
	httperrors "github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/errors"
)

const adminQueueLimit = 50

type AdminHandler struct {
	moderation *modsvc.Service
	reviews    *reviewsvc.Service
}

func NewAdminHandler(moderation *modsvc.Service, reviews *reviewsvc.Service) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		reviews:    reviews,
	}
}

func (h *AdminHandler) PendingSubmissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	limit := intQuery(r, "limit")
	if limit <= 0 || limit > adminQueueLimit {
		limit = adminQueueLimit
	}

	submissions, err := h.moderation.PendingSubmissions(r.Context(), limit, intQuery(r, "offset"))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list submissions")
		return
	}
	total, err := h.moderation.CountPendingSubmissions(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to count submissions")
		return
	}

	items := make([]dto.PendingSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, mapPendingSubmission(submission))
	}

	httperrors.Write(w, http.StatusOK, dto.PendingSubmissionsResponse{
		Items: items,
		Total: total,
	})
}

func (h *AdminHandler) PendingEdits(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	limit := intQuery(r, "limit")
	if limit <= 0 || limit > adminQueueLimit {
		limit = adminQueueLimit
	}

	edits, err := h.moderation.PendingEdits(r.Context(), limit, intQuery(r, "offset"))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list edits")
		return
	}

	items := make([]dto.PendingEditResponse, 0, len(edits))
	for _, edit := range edits {
		items = append(items, mapPendingEdit(edit))
	}

	httperrors.Write(w, http.StatusOK, dto.PendingEditsResponse{Items: items})
}

func (h *AdminHandler) ApproveSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	submissionID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	businessID, err := h.moderation.ApproveSubmission(r.Context(), identity.SubjectID, submissionID)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ApproveSubmissionResponse{
		OK:         true,
		BusinessID: businessID,
	})
}

func (h *AdminHandler) RejectSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	submissionID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	if err := h.moderation.RejectSubmission(r.Context(), identity.SubjectID, submissionID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) DiscardSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	submissionID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	if err := h.moderation.DiscardSubmissionAsAdmin(r.Context(), identity.SubjectID, submissionID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) ApproveEdit(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	editID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid edit id")
		return
	}

	if err := h.moderation.ApproveEdit(r.Context(), identity.SubjectID, editID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) RejectEdit(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	editID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid edit id")
		return
	}

	if err := h.moderation.RejectEdit(r.Context(), identity.SubjectID, editID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) DismissEdit(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	editID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid edit id")
		return
	}

	if err := h.moderation.DismissEditAsAdmin(r.Context(), identity.SubjectID, editID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req dto.AdminBusinessCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	businessID, err := h.moderation.CreateBusiness(r.Context(), identity.SubjectID, modsvc.CreateBusinessInput{
		NameHe:         req.NameHe,
		NameRu:         req.NameRu,
		DescriptionHe:  req.DescriptionHe,
		DescriptionRu:  req.DescriptionRu,
		AddressHe:      req.AddressHe,
		AddressRu:      req.AddressRu,
		OpeningHoursHe: req.OpeningHoursHe,
		OpeningHoursRu: req.OpeningHoursRu,
		Phone:          req.Phone,
		Whatsapp:       req.Whatsapp,
		Website:        req.Website,
		Email:          req.Email,
		CategoryID:     req.CategoryID,
		SubcategoryID:  req.SubcategoryID,
		NeighborhoodID: req.NeighborhoodID,
		IsVisible:      req.IsVisible,
	})
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminBusinessCreatedResponse{
		OK:         true,
		BusinessID: businessID,
	})
}

func (h *AdminHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	businessID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid business id")
		return
	}

	var req dto.AdminBusinessUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	patch := pgrepo.BusinessPatch{
		NameHe:         req.NameHe,
		NameRu:         req.NameRu,
		DescriptionHe:  req.DescriptionHe,
		DescriptionRu:  req.DescriptionRu,
		AddressHe:      req.AddressHe,
		AddressRu:      req.AddressRu,
		OpeningHoursHe: req.OpeningHoursHe,
		OpeningHoursRu: req.OpeningHoursRu,
		Phone:          req.Phone,
		Whatsapp:       req.Whatsapp,
		Website:        req.Website,
		Email:          req.Email,
		CategoryID:     req.CategoryID,
		SubcategoryID:  req.SubcategoryID,
		NeighborhoodID: req.NeighborhoodID,
		IsVisible:      req.IsVisible,
		IsVerified:     req.IsVerified,
		IsPinned:       req.IsPinned,
	}

	if err := h.moderation.UpdateBusiness(r.Context(), identity.SubjectID, businessID, patch); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) RemoveBusiness(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	businessID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid business id")
		return
	}

	if err := h.moderation.RemoveBusiness(r.Context(), identity.SubjectID, businessID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	h.moderateReview(w, r, func(identity authsvc.Identity, reviewID int64, value bool) error {
		return h.reviews.SetApproved(r.Context(), identity.SubjectID, reviewID, value)
	})
}

func (h *AdminHandler) FlagReview(w http.ResponseWriter, r *http.Request) {
	h.moderateReview(w, r, func(identity authsvc.Identity, reviewID int64, value bool) error {
		return h.reviews.SetFlagged(r.Context(), identity.SubjectID, reviewID, value)
	})
}

func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if h.reviews == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}
	reviewID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid review id")
		return
	}

	if err := h.reviews.Delete(r.Context(), identity.SubjectID, reviewID); err != nil {
		handleReviewModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) moderateReview(w http.ResponseWriter, r *http.Request, apply func(authsvc.Identity, int64, bool) error) {
	identity, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if h.reviews == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}
	reviewID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid review id")
		return
	}

	var req dto.ReviewModerationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := apply(identity, reviewID, req.Value); err != nil {
		handleReviewModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func handleReviewModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reviewsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "admin access required")
	case errors.Is(err, reviewsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "review not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "review moderation failed")
	}
}

func mapPendingSubmission(submission pgrepo.PendingBusinessRecord) dto.PendingSubmissionResponse {
	return dto.PendingSubmissionResponse{
		ID:             submission.ID,
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
		Status:         submission.Status,
		DecidedBy:      submission.DecidedBy,
		DecidedAt:      submission.DecidedAt,
		CreatedAt:      submission.CreatedAt,
	}
}
