package owners

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

type fakeBusinessStore struct {
	records map[int64]pgrepo.BusinessRecord
	linked  int64
}

func int64Ptr(v int64) *int64 { return &v }

func (s *fakeBusinessStore) GetByID(_ context.Context, id int64) (pgrepo.BusinessRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return pgrepo.BusinessRecord{}, pgrepo.ErrBusinessNotFound
	}
	return record, nil
}

func (s *fakeBusinessStore) ListByOwner(_ context.Context, ownerID int64) ([]pgrepo.BusinessRecord, error) {
	var out []pgrepo.BusinessRecord
	for _, record := range s.records {
		if record.OwnerID != nil && *record.OwnerID == ownerID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *fakeBusinessStore) LinkOwnersByEmail(context.Context) (int64, error) {
	return s.linked, nil
}

type fakeEditStore struct {
	edits map[int64]pgrepo.PendingEditRecord
}

func (s *fakeEditStore) GetLatestByBusiness(_ context.Context, businessID int64) (pgrepo.PendingEditRecord, error) {
	edit, ok := s.edits[businessID]
	if !ok {
		return pgrepo.PendingEditRecord{}, pgrepo.ErrPendingEditNotFound
	}
	return edit, nil
}

func newTestService() *Service {
	businesses := &fakeBusinessStore{
		records: map[int64]pgrepo.BusinessRecord{
			100: {ID: 100, OwnerID: int64Ptr(7)},
			101: {ID: 101, OwnerID: int64Ptr(8)},
			102: {ID: 102},
		},
		linked: 2,
	}
	edits := &fakeEditStore{edits: map[int64]pgrepo.PendingEditRecord{
		100: {ID: 1, BusinessID: 100, Status: "rejected"},
	}}
	return NewService(businesses, edits, nil)
}

func TestListMine(t *testing.T) {
	svc := newTestService()

	mine, err := svc.ListMine(context.Background(), 7)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != 100 {
		t.Fatalf("unexpected owned businesses: %+v", mine)
	}
}

func TestLatestEdit(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	edit, err := svc.LatestEdit(ctx, 7, 100)
	if err != nil {
		t.Fatalf("latest edit: %v", err)
	}
	if edit.Status != "rejected" {
		t.Fatalf("unexpected edit status %q", edit.Status)
	}

	if _, err := svc.LatestEdit(ctx, 8, 100); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.LatestEdit(ctx, 8, 101); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for business without edits, got %v", err)
	}
	if _, err := svc.LatestEdit(ctx, 7, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown business, got %v", err)
	}
}

func TestLinkByEmail(t *testing.T) {
	svc := newTestService()

	linked, err := svc.LinkByEmail(context.Background())
	if err != nil {
		t.Fatalf("link by email: %v", err)
	}
	if linked != 2 {
		t.Fatalf("expected 2 linked, got %d", linked)
	}
}
