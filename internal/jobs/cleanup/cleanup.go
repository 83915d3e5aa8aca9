package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
)

// RejectedPurger removes rejected moderation rows older than the cutoff.
type RejectedPurger interface {
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type DeletedPhotoStore interface {
	ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]pgrepo.PhotoRecord, error)
	DeleteRow(ctx context.Context, id int64) error
}

type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// Job purges rejected submissions and edits past their retention window and
// reclaims storage behind soft-deleted photos. Meant to run from cron.
type Job struct {
	submissions    RejectedPurger
	edits          RejectedPurger
	photos         DeletedPhotoStore
	storage        ObjectRemover
	retention      time.Duration
	photoRetention time.Duration
	photoBatch     int
	now            func() time.Time
	logger         *zap.Logger
}

func New(
	submissions RejectedPurger,
	edits RejectedPurger,
	photos DeletedPhotoStore,
	storage ObjectRemover,
	retention time.Duration,
	logger *zap.Logger,
) *Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		submissions:    submissions,
		edits:          edits,
		photos:         photos,
		storage:        storage,
		retention:      retention,
		photoRetention: 30 * 24 * time.Hour,
		photoBatch:     100,
		now:            time.Now,
		logger:         logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	if j.submissions != nil {
		rows, err := j.submissions.DeleteRejectedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purge rejected submissions: %w", err)
		}
		if rows > 0 {
			j.logger.Info("purged rejected submissions", zap.Int64("rows", rows))
		}
	}

	if j.edits != nil {
		rows, err := j.edits.DeleteRejectedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purge rejected edits: %w", err)
		}
		if rows > 0 {
			j.logger.Info("purged rejected edits", zap.Int64("rows", rows))
		}
	}

	if j.photos != nil {
		if err := j.purgePhotos(ctx); err != nil {
			return err
		}
	}

	return nil
}

// purgePhotos removes the backing object before the row, so a crash between
// the two leaves a row that the next run retries instead of an orphaned
// object nothing references.
func (j *Job) purgePhotos(ctx context.Context) error {
	cutoff := j.now().Add(-j.photoRetention)

	records, err := j.photos.ListDeletedBefore(ctx, cutoff, j.photoBatch)
	if err != nil {
		return fmt.Errorf("list deleted photos: %w", err)
	}

	purged := 0
	for _, rec := range records {
		if j.storage != nil {
			if err := j.storage.Delete(ctx, rec.ObjectKey); err != nil {
				j.logger.Warn("delete photo object failed",
					zap.Int64("photo_id", rec.ID),
					zap.Error(err),
				)
				continue
			}
		}
		if err := j.photos.DeleteRow(ctx, rec.ID); err != nil {
			return fmt.Errorf("delete photo row %d: %w", rec.ID, err)
		}
		purged++
	}

	if purged > 0 {
		j.logger.Info("purged deleted photos", zap.Int("count", purged))
	}

	return nil
}
