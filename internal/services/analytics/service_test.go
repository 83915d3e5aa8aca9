package analytics

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

type fakeEventStore struct {
	inserted []pgrepo.EventInsert
	err      error
}

func (s *fakeEventStore) InsertBatch(_ context.Context, events []pgrepo.EventInsert) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.inserted = append(s.inserted, events...)
	return len(events), nil
}

func TestIngestBatch(t *testing.T) {
	store := &fakeEventStore{}
	svc := NewService(store, 10, nil)

	accepted, err := svc.IngestBatch(context.Background(), []EventInput{
		{Name: "page.view", Payload: map[string]any{"slug": "test-cafe"}},
		{Name: "  "},
		{Name: "phone.click"},
	})
	if err != nil {
		t.Fatalf("ingest batch: %v", err)
	}
	if accepted != 2 {
		t.Fatalf("expected 2 accepted, got %d", accepted)
	}
	if len(store.inserted) != 2 {
		t.Fatalf("expected 2 inserted, got %d", len(store.inserted))
	}
}

func TestIngestBatchRejectsOversized(t *testing.T) {
	svc := NewService(&fakeEventStore{}, 2, nil)

	batch := []EventInput{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	if _, err := svc.IngestBatch(context.Background(), batch); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIngestBatchSwallowsStoreErrors(t *testing.T) {
	store := &fakeEventStore{err: errors.New("db down")}
	svc := NewService(store, 10, nil)

	accepted, err := svc.IngestBatch(context.Background(), []EventInput{{Name: "page.view"}})
	if err != nil {
		t.Fatalf("expected best-effort success, got %v", err)
	}
	if accepted != 0 {
		t.Fatalf("expected 0 accepted on failure, got %d", accepted)
	}
}
