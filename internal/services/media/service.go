package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrPhotoLimitReached = errors.New("photo limit reached")
)

const signedURLTTL = 5 * time.Minute

type PhotoStore interface {
	Create(ctx context.Context, businessID int64, objectKey string, maxPerBusiness int) (int64, error)
	GetByID(ctx context.Context, id int64) (pgrepo.PhotoRecord, error)
	ListActiveByBusiness(ctx context.Context, businessID int64) ([]pgrepo.PhotoRecord, error)
	SoftDelete(ctx context.Context, id int64) error
}

type BusinessStore interface {
	GetByID(ctx context.Context, id int64) (pgrepo.BusinessRecord, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Photo struct {
	ID        int64
	Position  int
	URL       string
	CreatedAt time.Time
}

type Service struct {
	photos     PhotoStore
	businesses BusinessStore
	storage    ObjectStorage
	maxPhotos  int
}

func NewService(photos PhotoStore, businesses BusinessStore, storage ObjectStorage, maxPhotos int) *Service {
	if maxPhotos <= 0 {
		maxPhotos = 6
	}

	return &Service{
		photos:     photos,
		businesses: businesses,
		storage:    storage,
		maxPhotos:  maxPhotos,
	}
}

// UploadPhoto stores the object first and only then the DB row, deleting the
// object again if the row is refused. An orphan object is cheaper than a row
// pointing at nothing.
func (s *Service) UploadPhoto(ctx context.Context, ownerID, businessID int64, fileName, contentType string, body io.Reader, size int64) (Photo, error) {
	if businessID <= 0 || body == nil || size <= 0 {
		return Photo{}, ErrValidation
	}
	if s.photos == nil || s.storage == nil {
		return Photo{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.requireOwner(ctx, ownerID, businessID); err != nil {
		return Photo{}, err
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Photo{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(businessID, fileName)
	if err != nil {
		return Photo{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("put object: %w", err)
	}

	photoID, err := s.photos.Create(ctx, businessID, objectKey, s.maxPhotos)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		if errors.Is(err, pgrepo.ErrPhotoLimitReached) {
			return Photo{}, ErrPhotoLimitReached
		}
		return Photo{}, fmt.Errorf("create photo record: %w", err)
	}

	record, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return Photo{}, fmt.Errorf("load photo record: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Photo{}, fmt.Errorf("presign photo url: %w", err)
	}

	return Photo{
		ID:        record.ID,
		Position:  record.Position,
		URL:       url,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s *Service) ListPhotos(ctx context.Context, businessID int64) ([]Photo, error) {
	if businessID <= 0 {
		return nil, ErrValidation
	}
	if s.photos == nil || s.storage == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	records, err := s.photos.ListActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("list photo records: %w", err)
	}

	photos := make([]Photo, 0, len(records))
	for _, rec := range records {
		url, err := s.storage.PresignGet(ctx, rec.ObjectKey, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign photo url: %w", err)
		}
		photos = append(photos, Photo{
			ID:        rec.ID,
			Position:  rec.Position,
			URL:       url,
			CreatedAt: rec.CreatedAt,
		})
	}

	return photos, nil
}

func (s *Service) DeletePhoto(ctx context.Context, ownerID, photoID int64) error {
	if photoID <= 0 {
		return ErrValidation
	}

	record, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load photo record: %w", err)
	}

	if err := s.requireOwner(ctx, ownerID, record.BusinessID); err != nil {
		return err
	}

	if err := s.photos.SoftDelete(ctx, photoID); err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete photo record: %w", err)
	}

	// The object stays for soft-deleted rows; only the listing forgets it.
	return nil
}

func (s *Service) requireOwner(ctx context.Context, ownerID, businessID int64) error {
	if ownerID <= 0 {
		return ErrForbidden
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBusinessNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load business: %w", err)
	}
	if business.OwnerID == nil || *business.OwnerID != ownerID {
		return ErrForbidden
	}

	return nil
}

func buildObjectKey(businessID int64, fileName string) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 10 {
		ext = ""
	}

	return "businesses/" + strconv.FormatInt(businessID, 10) + "/" + hex.EncodeToString(suffix) + ext, nil
}
