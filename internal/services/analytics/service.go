package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

const maxEventNameLen = 64

type EventStore interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventInsert) (int, error)
}

type EventInput struct {
	Name       string
	Payload    map[string]any
	OccurredAt time.Time
}

// Service ingests client analytics events. Best effort end to end: a storage
// failure is logged and reported as zero accepted, never as a 5xx.
type Service struct {
	store    EventStore
	maxBatch int
	logger   *zap.Logger
}

func NewService(store EventStore, maxBatch int, logger *zap.Logger) *Service {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:    store,
		maxBatch: maxBatch,
		logger:   logger,
	}
}

func (s *Service) IngestBatch(ctx context.Context, events []EventInput) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	if len(events) > s.maxBatch {
		return 0, fmt.Errorf("batch exceeds %d events: %w", s.maxBatch, ErrValidation)
	}

	inserts := make([]pgrepo.EventInsert, 0, len(events))
	for _, ev := range events {
		name := strings.TrimSpace(ev.Name)
		if name == "" || len(name) > maxEventNameLen {
			continue
		}
		inserts = append(inserts, pgrepo.EventInsert{
			Name:       name,
			Payload:    ev.Payload,
			OccurredAt: ev.OccurredAt,
		})
	}
	if len(inserts) == 0 {
		return 0, nil
	}

	accepted, err := s.store.InsertBatch(ctx, inserts)
	if err != nil {
		s.logger.Warn("event batch insert failed", zap.Int("accepted", accepted), zap.Error(err))
		return accepted, nil
	}

	return accepted, nil
}
