package reviews

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

type fakeReviewStore struct {
	nextID int64
	rows   map[int64]*pgrepo.ReviewRecord
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{nextID: 1, rows: map[int64]*pgrepo.ReviewRecord{}}
}

func (s *fakeReviewStore) Create(_ context.Context, in pgrepo.ReviewInsert) (int64, error) {
	id := s.nextID
	s.nextID++
	s.rows[id] = &pgrepo.ReviewRecord{
		ID:         id,
		BusinessID: in.BusinessID,
		Rating:     in.Rating,
		AuthorName: in.AuthorName,
		CommentHe:  in.CommentHe,
		CommentRu:  in.CommentRu,
	}
	return id, nil
}

func (s *fakeReviewStore) GetByID(_ context.Context, id int64) (pgrepo.ReviewRecord, error) {
	row, ok := s.rows[id]
	if !ok {
		return pgrepo.ReviewRecord{}, pgrepo.ErrReviewNotFound
	}
	return *row, nil
}

func (s *fakeReviewStore) ListApprovedByBusiness(_ context.Context, businessID int64, _, _ int) ([]pgrepo.ReviewRecord, error) {
	var out []pgrepo.ReviewRecord
	for _, row := range s.rows {
		if row.BusinessID == businessID && row.IsApproved && !row.IsFlagged {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeReviewStore) SetApproved(_ context.Context, id int64, approved bool) error {
	row, ok := s.rows[id]
	if !ok {
		return pgrepo.ErrReviewNotFound
	}
	row.IsApproved = approved
	return nil
}

func (s *fakeReviewStore) SetFlagged(_ context.Context, id int64, flagged bool) error {
	row, ok := s.rows[id]
	if !ok {
		return pgrepo.ErrReviewNotFound
	}
	row.IsFlagged = flagged
	return nil
}

func (s *fakeReviewStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.rows[id]; !ok {
		return pgrepo.ErrReviewNotFound
	}
	delete(s.rows, id)
	return nil
}

type fakeBusinessStore struct{}

func (fakeBusinessStore) GetByID(_ context.Context, id int64) (pgrepo.BusinessRecord, error) {
	switch id {
	case 100:
		return pgrepo.BusinessRecord{ID: 100, IsVisible: true}, nil
	case 101:
		return pgrepo.BusinessRecord{ID: 101, IsVisible: false}, nil
	default:
		return pgrepo.BusinessRecord{}, pgrepo.ErrBusinessNotFound
	}
}

func (fakeBusinessStore) GetPublicBySlug(_ context.Context, slug string) (pgrepo.BusinessRecord, error) {
	if slug != "maspera-shel-yossi" {
		return pgrepo.BusinessRecord{}, pgrepo.ErrBusinessNotFound
	}
	return pgrepo.BusinessRecord{ID: 100, Slug: slug, IsVisible: true}, nil
}

func strPtr(v string) *string { return &v }

func newTestService() (*Service, *fakeReviewStore) {
	store := newFakeReviewStore()
	return NewService(store, fakeBusinessStore{}, nil, nil), store
}

func TestCreateReviewRequiresApproval(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{BusinessID: 100, Rating: 5, AuthorName: "Анна", CommentRu: strPtr("Отлично")})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	approved, err := svc.ListApproved(ctx, 100, 50, 0)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 0 {
		t.Fatal("new review must not be public before approval")
	}

	if err := svc.SetApproved(ctx, 9, id, true); err != nil {
		t.Fatalf("approve review: %v", err)
	}
	approved, err = svc.ListApproved(ctx, 100, 50, 0)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 1 {
		t.Fatalf("expected one approved review, got %d", len(approved))
	}

	if err := svc.SetFlagged(ctx, 9, id, true); err != nil {
		t.Fatalf("flag review: %v", err)
	}
	approved, _ = svc.ListApproved(ctx, 100, 50, 0)
	if len(approved) != 0 {
		t.Fatal("flagged review must not be public")
	}

	if err := svc.Delete(ctx, 9, id); err != nil {
		t.Fatalf("delete review: %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatal("expected review removed")
	}
}

func TestCreateReviewValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"rating too low", CreateInput{BusinessID: 100, Rating: 0, AuthorName: "a"}, ErrValidation},
		{"rating too high", CreateInput{BusinessID: 100, Rating: 6, AuthorName: "a"}, ErrValidation},
		{"missing author", CreateInput{BusinessID: 100, Rating: 3, AuthorName: "  "}, ErrValidation},
		{"unknown business", CreateInput{BusinessID: 999, Rating: 3, AuthorName: "a"}, ErrNotFound},
		{"hidden business", CreateInput{BusinessID: 101, Rating: 3, AuthorName: "a"}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAdminOpsOnMissingReview(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SetApproved(ctx, 9, 999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, 9, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateForSlugResolvesBusiness(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	id, err := svc.CreateForSlug(ctx, "maspera-shel-yossi", CreateInput{Rating: 4, AuthorName: "Дима"})
	if err != nil {
		t.Fatalf("create review by slug: %v", err)
	}
	if store.rows[id].BusinessID != 100 {
		t.Fatalf("expected review on business 100, got %d", store.rows[id].BusinessID)
	}

	if _, err := svc.CreateForSlug(ctx, "no-such-place", CreateInput{Rating: 4, AuthorName: "Дима"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CreateForSlug(ctx, "  ", CreateInput{Rating: 4, AuthorName: "Дима"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
