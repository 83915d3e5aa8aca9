package handlers

import (
	"errors"
	"net/http"
	"time"

	analyticsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/analytics"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/dto"
	httperrors "github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/errors"
)

type EventsHandler struct {
	service *analyticsvc.Service
}

func NewEventsHandler(service *analyticsvc.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

func (h *EventsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENTS_SERVICE_UNAVAILABLE", "events service is unavailable")
		return
	}

	var req dto.EventsBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	input := make([]analyticsvc.EventInput, 0, len(req))
	for _, item := range req {
		var occurredAt time.Time
		if item.TS > 0 {
			occurredAt = time.UnixMilli(item.TS).UTC()
		}
		input = append(input, analyticsvc.EventInput{
			Name:       item.Name,
			Payload:    item.Props,
			OccurredAt: occurredAt,
		})
	}

	accepted, err := h.service.IngestBatch(r.Context(), input)
	if err != nil {
		if errors.Is(err, analyticsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid events batch")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to ingest events")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EventsBatchResponse{
		OK:       true,
		Accepted: accepted,
	})
}
