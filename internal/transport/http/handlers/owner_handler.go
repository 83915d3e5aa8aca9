package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	authsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/auth"
	modsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/moderation"
	ownerssvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/owners"
	subsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/submissions"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/dto"
	httperrors "github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/errors"
)

type OwnerHandler struct {
	owners      *ownerssvc.Service
	submissions *subsvc.Service
	moderation  *modsvc.Service
}

func NewOwnerHandler(owners *ownerssvc.Service, submissions *subsvc.Service, moderation *modsvc.Service) *OwnerHandler {
	return &OwnerHandler{
		owners:      owners,
		submissions: submissions,
		moderation:  moderation,
	}
}

func (h *OwnerHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.owners == nil {
		writeInternal(w, "OWNER_SERVICE_UNAVAILABLE", "owner service is unavailable")
		return
	}

	records, err := h.owners.ListMine(r.Context(), identity.SubjectID)
	if err != nil {
		if errors.Is(err, ownerssvc.ErrForbidden) {
			writeForbidden(w, "FORBIDDEN", "owner access required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list businesses")
		return
	}

	items := make([]dto.OwnerBusinessResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.OwnerBusinessResponse{
			BusinessResponse: mapBusiness(record),
			IsVisible:        record.IsVisible,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.OwnerBusinessListResponse{Items: items})
}

func (h *OwnerHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.submissions == nil {
		writeInternal(w, "SUBMISSION_SERVICE_UNAVAILABLE", "submission service is unavailable")
		return
	}

	businessID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid business id")
		return
	}

	var req dto.EditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	id, err := h.submissions.SubmitEdit(r.Context(), identity.SubjectID, businessID, subsvc.EditInput{
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
	})
	if err != nil {
		switch {
		case errors.Is(err, subsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid edit")
		case errors.Is(err, subsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "you do not own this business")
		case errors.Is(err, subsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "business not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to queue edit")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EditCreatedResponse{
		ID:     id,
		Status: "pending",
	})
}

func (h *OwnerHandler) LatestEdit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.owners == nil {
		writeInternal(w, "OWNER_SERVICE_UNAVAILABLE", "owner service is unavailable")
		return
	}

	businessID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid business id")
		return
	}

	edit, err := h.owners.LatestEdit(r.Context(), identity.SubjectID, businessID)
	if err != nil {
		switch {
		case errors.Is(err, ownerssvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "you do not own this business")
		case errors.Is(err, ownerssvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "no edits for this business")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load edit")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapPendingEdit(edit))
}

func (h *OwnerHandler) DismissEdit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	editID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid edit id")
		return
	}

	if err := h.moderation.DismissEdit(r.Context(), identity.SubjectID, editID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *OwnerHandler) DiscardSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	submissionID, ok := idFromURL(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	if err := h.moderation.DiscardSubmissionAsOwner(r.Context(), identity.SubjectID, submissionID); err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, modsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "not allowed")
	case errors.Is(err, modsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "not found")
	case errors.Is(err, modsvc.ErrConflict):
		writeConflict(w, "CONFLICT", "already decided")
	default:
		writeInternal(w, "INTERNAL_ERROR", "moderation operation failed")
	}
}

func mapPendingEdit(edit pgrepo.PendingEditRecord) dto.PendingEditResponse {
	return dto.PendingEditResponse{
		ID:             edit.ID,
		BusinessID:     edit.BusinessID,
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
		Status:         edit.Status,
		DecidedBy:      edit.DecidedBy,
		DecidedAt:      edit.DecidedAt,
		CreatedAt:      edit.CreatedAt,
	}
}

func idFromURL(r *http.Request, name string) (int64, bool) {
	if r == nil {
		return 0, false
	}
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
