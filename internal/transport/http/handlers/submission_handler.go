package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/domain/enums"
	ratesvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/rate"
	subsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/submissions"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/dto"
	httperrors "github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/errors"
)

type SubmissionHandler struct {
	service *subsvc.Service
	limiter *ratesvc.Limiter
}

func NewSubmissionHandler(service *subsvc.Service, limiter *ratesvc.Limiter) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		limiter: limiter,
	}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SUBMISSION_SERVICE_UNAVAILABLE", "submission service is unavailable")
		return
	}

	if retryAfter, ok := allowRequest(r, h.limiter); !ok {
		writeTooManyRequests(w, "RATE_LIMITED", "too many submissions, try again later", retryAfter)
		return
	}

	var req dto.SubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	id, err := h.service.SubmitBusiness(r.Context(), subsvc.SubmissionInput{
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
		SubmitterEmail: req.SubmitterEmail,
		CategoryID:     req.CategoryID,
		SubcategoryID:  req.SubcategoryID,
		NeighborhoodID: req.NeighborhoodID,
	})
	if err != nil {
		if errors.Is(err, subsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid submission")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to queue submission")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SubmissionCreatedResponse{
		ID:     id,
		Status: string(enums.PendingStatusPending),
	})
}

// allowRequest applies the per-IP limiter. A limiter failure lets the request
// through, moderation is the real gate.
func allowRequest(r *http.Request, limiter *ratesvc.Limiter) (int64, bool) {
	if limiter == nil {
		return 0, true
	}
	retryAfter, allowed, err := limiter.Allow(r.Context(), clientIPFromRequest(r))
	if err != nil {
		return 0, true
	}
	return retryAfter, allowed
}

func clientIPFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if value := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); value != "" {
		parts := strings.Split(value, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if value := strings.TrimSpace(r.Header.Get("X-Real-IP")); value != "" {
		return value
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
