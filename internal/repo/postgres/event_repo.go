package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepo stores analytics and audit events. Writes are best effort: the
// caller logs failures and moves on.
type EventRepo struct {
	pool *pgxpool.Pool
}

type EventInsert struct {
	Name       string
	Payload    map[string]any
	OccurredAt time.Time
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// InsertBatch writes the events in a single round trip. Events with an empty
// name are skipped rather than failing the batch.
func (r *EventRepo) InsertBatch(ctx context.Context, events []EventInsert) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	queued := 0
	for _, ev := range events {
		if ev.Name == "" {
			continue
		}
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			continue
		}
		occurred := ev.OccurredAt
		if occurred.IsZero() {
			occurred = time.Now().UTC()
		}
		batch.Queue(`
INSERT INTO events (id, name, payload, occurred_at, created_at)
VALUES ($1, $2, $3, $4, NOW())
`, uuid.NewString(), ev.Name, payload, occurred)
		queued++
	}
	if queued == 0 {
		return 0, nil
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			return inserted, fmt.Errorf("insert event: %w", err)
		}
		inserted++
	}

	return inserted, nil
}
