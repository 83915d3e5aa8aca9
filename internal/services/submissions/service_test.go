package submissions

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

type fakePendingStore struct {
	created []pgrepo.PendingBusinessInsert
}

func (s *fakePendingStore) Create(_ context.Context, in pgrepo.PendingBusinessInsert) (int64, error) {
	s.created = append(s.created, in)
	return int64(len(s.created)), nil
}

// fakeEditStore keeps at most one open edit per business, matching the
// partial unique index the real store upserts against.
type fakeEditStore struct {
	nextID int64
	ids    map[int64]int64
	open   map[int64]pgrepo.PendingEditInsert
}

func newFakeEditStore() *fakeEditStore {
	return &fakeEditStore{
		ids:  map[int64]int64{},
		open: map[int64]pgrepo.PendingEditInsert{},
	}
}

func (s *fakeEditStore) Upsert(_ context.Context, in pgrepo.PendingEditInsert) (int64, error) {
	if id, ok := s.ids[in.BusinessID]; ok {
		s.open[in.BusinessID] = in
		return id, nil
	}
	s.nextID++
	s.ids[in.BusinessID] = s.nextID
	s.open[in.BusinessID] = in
	return s.nextID, nil
}

type fakeBusinessStore struct {
	businesses map[int64]pgrepo.BusinessRecord
}

func (s *fakeBusinessStore) GetByID(_ context.Context, id int64) (pgrepo.BusinessRecord, error) {
	business, ok := s.businesses[id]
	if !ok {
		return pgrepo.BusinessRecord{}, pgrepo.ErrBusinessNotFound
	}
	return business, nil
}

type fakeLookupStore struct{}

func (fakeLookupStore) GetCategory(_ context.Context, id int64) (pgrepo.CategoryRecord, error) {
	if id != 1 {
		return pgrepo.CategoryRecord{}, pgrepo.ErrCategoryNotFound
	}
	return pgrepo.CategoryRecord{ID: 1, Slug: "restaurants"}, nil
}

func (fakeLookupStore) GetSubcategory(_ context.Context, id int64) (pgrepo.SubcategoryRecord, error) {
	switch id {
	case 10:
		return pgrepo.SubcategoryRecord{ID: 10, CategoryID: 1, Slug: "sushi"}, nil
	case 20:
		return pgrepo.SubcategoryRecord{ID: 20, CategoryID: 2, Slug: "plumbers"}, nil
	default:
		return pgrepo.SubcategoryRecord{}, pgrepo.ErrSubcategoryNotFound
	}
}

func (fakeLookupStore) GetNeighborhood(_ context.Context, id int64) (pgrepo.NeighborhoodRecord, error) {
	if id != 5 {
		return pgrepo.NeighborhoodRecord{}, pgrepo.ErrNeighborhoodNotFound
	}
	return pgrepo.NeighborhoodRecord{ID: 5, CityID: 1, Slug: "city-center"}, nil
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func validSubmission() SubmissionInput {
	return SubmissionInput{
		NameHe:         "מספרה של יוסי",
		Phone:          strPtr("09-1234567"),
		CategoryID:     1,
		NeighborhoodID: 5,
	}
}

func newTestService(t *testing.T) (*Service, *fakePendingStore, *fakeEditStore, *fakeBusinessStore) {
	t.Helper()

	pending := &fakePendingStore{}
	edits := newFakeEditStore()
	businesses := &fakeBusinessStore{businesses: map[int64]pgrepo.BusinessRecord{
		100: {
			ID:        100,
			NameHe:    "מספרה של יוסי",
			Phone:     strPtr("09-1234567"),
			OwnerID:   int64Ptr(7),
			CityID:    1,
			IsVisible: true,
		},
	}}
	svc := NewService(pending, edits, businesses, fakeLookupStore{}, nil, nil)
	return svc, pending, edits, businesses
}

func TestSubmitBusiness(t *testing.T) {
	svc, pending, _, _ := newTestService(t)

	id, err := svc.SubmitBusiness(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("submit business: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if len(pending.created) != 1 {
		t.Fatalf("expected one pending row, got %d", len(pending.created))
	}
	if pending.created[0].NameHe != "מספרה של יוסי" {
		t.Fatalf("unexpected name: %q", pending.created[0].NameHe)
	}
}

func TestSubmitBusinessValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SubmissionInput)
	}{
		{"no names", func(in *SubmissionInput) { in.NameHe = ""; in.NameRu = "  " }},
		{"no phone or whatsapp", func(in *SubmissionInput) { in.Phone = nil; in.Whatsapp = strPtr(" ") }},
		{"bad email", func(in *SubmissionInput) { in.Email = strPtr("not an email") }},
		{"bad submitter email", func(in *SubmissionInput) { in.SubmitterEmail = strPtr("missing-at.example.com") }},
		{"unknown category", func(in *SubmissionInput) { in.CategoryID = 99 }},
		{"unknown subcategory", func(in *SubmissionInput) { in.SubcategoryID = int64Ptr(99) }},
		{"subcategory from other category", func(in *SubmissionInput) { in.SubcategoryID = int64Ptr(20) }},
		{"unknown neighborhood", func(in *SubmissionInput) { in.NeighborhoodID = 99 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSubmission()
			tt.mutate(&in)
			if _, err := svc.SubmitBusiness(ctx, in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSubmitBusinessAllowsWhatsappOnly(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	in := validSubmission()
	in.Phone = nil
	in.Whatsapp = strPtr("+972501234567")

	if _, err := svc.SubmitBusiness(context.Background(), in); err != nil {
		t.Fatalf("submit with whatsapp only: %v", err)
	}
}

func TestSubmitBusinessLowercasesSubmitterEmail(t *testing.T) {
	svc, pending, _, _ := newTestService(t)

	in := validSubmission()
	in.SubmitterEmail = strPtr("Owner@Example.COM")

	if _, err := svc.SubmitBusiness(context.Background(), in); err != nil {
		t.Fatalf("submit business: %v", err)
	}
	if got := pending.created[0].SubmitterEmail; got == nil || *got != "owner@example.com" {
		t.Fatalf("expected lowercased submitter email, got %v", got)
	}
}

func TestSubmitEdit(t *testing.T) {
	svc, _, edits, _ := newTestService(t)

	id, err := svc.SubmitEdit(context.Background(), 7, 100, EditInput{
		DescriptionRu: strPtr("Лучшая парикмахерская в городе"),
	})
	if err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected edit id 1, got %d", id)
	}
	if edits.open[100].BusinessID != 100 {
		t.Fatalf("unexpected business id %d", edits.open[100].BusinessID)
	}
}

func TestSubmitEditSupersedesOpenEdit(t *testing.T) {
	svc, _, edits, _ := newTestService(t)
	ctx := context.Background()

	firstID, err := svc.SubmitEdit(ctx, 7, 100, EditInput{DescriptionRu: strPtr("Старое описание")})
	if err != nil {
		t.Fatalf("first edit: %v", err)
	}

	secondID, err := svc.SubmitEdit(ctx, 7, 100, EditInput{Phone: strPtr("09-7654321")})
	if err != nil {
		t.Fatalf("second edit: %v", err)
	}
	if secondID != firstID {
		t.Fatalf("expected resubmission to reuse the open edit row, got %d then %d", firstID, secondID)
	}
	if len(edits.open) != 1 {
		t.Fatalf("expected a single open edit for the business, got %d", len(edits.open))
	}

	row := edits.open[100]
	if row.Phone == nil || *row.Phone != "09-7654321" {
		t.Fatalf("expected the second diff's phone, got %v", row.Phone)
	}
	if row.DescriptionRu != nil {
		t.Fatal("superseded diff must not leak into the replacement")
	}
}

func TestSubmitEditForbiddenForNonOwner(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.SubmitEdit(context.Background(), 8, 100, EditInput{NameRu: strPtr("Чужое")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitEditUnknownBusiness(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.SubmitEdit(context.Background(), 7, 999, EditInput{NameRu: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitEditRejectsEmptyDiff(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.SubmitEdit(context.Background(), 7, 100, EditInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSubmitEditCannotClearRequiredContact(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SubmitEdit(ctx, 7, 100, EditInput{Phone: strPtr("")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation when clearing the only contact, got %v", err)
	}

	if _, err := svc.SubmitEdit(ctx, 7, 100, EditInput{Phone: strPtr(""), Whatsapp: strPtr("+972501234567")}); err != nil {
		t.Fatalf("clearing phone while adding whatsapp should pass: %v", err)
	}

	if _, err := svc.SubmitEdit(ctx, 7, 100, EditInput{NameHe: strPtr(""), NameRu: strPtr("")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation when clearing both names, got %v", err)
	}
}
