package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

type memStorage struct {
	objects map[string][]byte
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) EnsureBucket(context.Context) error { return nil }

func (s *memStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("object missing")
	}
	return "https://s3.test/" + key + "?signed=1", nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type memPhotoStore struct {
	nextID int64
	rows   map[int64]pgrepo.PhotoRecord
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{nextID: 1, rows: map[int64]pgrepo.PhotoRecord{}}
}

func (s *memPhotoStore) Create(_ context.Context, businessID int64, objectKey string, maxPerBusiness int) (int64, error) {
	count := 0
	for _, row := range s.rows {
		if row.BusinessID == businessID {
			count++
		}
	}
	if count >= maxPerBusiness {
		return 0, pgrepo.ErrPhotoLimitReached
	}

	id := s.nextID
	s.nextID++
	s.rows[id] = pgrepo.PhotoRecord{
		ID:         id,
		BusinessID: businessID,
		ObjectKey:  objectKey,
		Position:   count + 1,
		CreatedAt:  time.Now(),
	}
	return id, nil
}

func (s *memPhotoStore) GetByID(_ context.Context, id int64) (pgrepo.PhotoRecord, error) {
	row, ok := s.rows[id]
	if !ok {
		return pgrepo.PhotoRecord{}, pgrepo.ErrPhotoNotFound
	}
	return row, nil
}

func (s *memPhotoStore) ListActiveByBusiness(_ context.Context, businessID int64) ([]pgrepo.PhotoRecord, error) {
	var out []pgrepo.PhotoRecord
	for _, row := range s.rows {
		if row.BusinessID == businessID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *memPhotoStore) SoftDelete(_ context.Context, id int64) error {
	if _, ok := s.rows[id]; !ok {
		return pgrepo.ErrPhotoNotFound
	}
	delete(s.rows, id)
	return nil
}

type memBusinessStore struct{}

func int64Ptr(v int64) *int64 { return &v }

func (memBusinessStore) GetByID(_ context.Context, id int64) (pgrepo.BusinessRecord, error) {
	if id != 100 {
		return pgrepo.BusinessRecord{}, pgrepo.ErrBusinessNotFound
	}
	return pgrepo.BusinessRecord{ID: 100, OwnerID: int64Ptr(7)}, nil
}

func newTestService() (*Service, *memPhotoStore, *memStorage) {
	photos := newMemPhotoStore()
	storage := newMemStorage()
	svc := NewService(photos, memBusinessStore{}, storage, 2)
	return svc, photos, storage
}

func upload(t *testing.T, svc *Service, ownerID int64) (Photo, error) {
	t.Helper()
	body := bytes.NewReader([]byte("jpeg-bytes"))
	return svc.UploadPhoto(context.Background(), ownerID, 100, "front.jpg", "image/jpeg", body, int64(body.Len()))
}

func TestUploadPhoto(t *testing.T) {
	svc, photos, storage := newTestService()

	photo, err := upload(t, svc, 7)
	if err != nil {
		t.Fatalf("upload photo: %v", err)
	}
	if photo.Position != 1 {
		t.Fatalf("expected position 1, got %d", photo.Position)
	}
	if !strings.Contains(photo.URL, "businesses/100/") {
		t.Fatalf("unexpected url %q", photo.URL)
	}
	if !strings.HasSuffix(photos.rows[photo.ID].ObjectKey, ".jpg") {
		t.Fatalf("expected extension kept, got %q", photos.rows[photo.ID].ObjectKey)
	}
	if len(storage.objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(storage.objects))
	}
}

func TestUploadPhotoForbiddenForNonOwner(t *testing.T) {
	svc, _, storage := newTestService()

	if _, err := upload(t, svc, 8); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(storage.objects) != 0 {
		t.Fatal("no object should be stored for a forbidden upload")
	}
}

func TestUploadPhotoLimitCleansUpObject(t *testing.T) {
	svc, _, storage := newTestService()

	for i := 0; i < 2; i++ {
		if _, err := upload(t, svc, 7); err != nil {
			t.Fatalf("upload #%d: %v", i+1, err)
		}
	}

	if _, err := upload(t, svc, 7); !errors.Is(err, ErrPhotoLimitReached) {
		t.Fatalf("expected ErrPhotoLimitReached, got %v", err)
	}
	if len(storage.deleted) != 1 {
		t.Fatalf("expected the over-limit object to be deleted, got %v", storage.deleted)
	}
	if len(storage.objects) != 2 {
		t.Fatalf("expected two stored objects, got %d", len(storage.objects))
	}
}

func TestDeletePhoto(t *testing.T) {
	svc, photos, _ := newTestService()

	photo, err := upload(t, svc, 7)
	if err != nil {
		t.Fatalf("upload photo: %v", err)
	}

	if err := svc.DeletePhoto(context.Background(), 8, photo.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner delete, got %v", err)
	}
	if err := svc.DeletePhoto(context.Background(), 7, photo.ID); err != nil {
		t.Fatalf("delete photo: %v", err)
	}
	if len(photos.rows) != 0 {
		t.Fatal("expected photo row removed")
	}
	if err := svc.DeletePhoto(context.Background(), 7, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListPhotosPresignsURLs(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := upload(t, svc, 7); err != nil {
		t.Fatalf("upload photo: %v", err)
	}

	listed, err := svc.ListPhotos(context.Background(), 100)
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one photo, got %d", len(listed))
	}
	if !strings.Contains(listed[0].URL, "signed=1") {
		t.Fatalf("expected presigned url, got %q", listed[0].URL)
	}
}
