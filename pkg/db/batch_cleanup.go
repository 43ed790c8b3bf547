package db

import (
	"context"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/logger"
	"gorm.io/gorm"
)

const BatchCleanupInterval = 6 * time.Hour

// CleanupGenerationBatches deletes audit batches created before cutoff and
// detaches the shared sentences that pointed at them.
func CleanupGenerationBatches(gdb *gorm.DB, cutoff time.Time) (int64, error) {
	if gdb == nil {
		return 0, nil
	}
	var deleted int64
	err := gdb.Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&GenerationBatch{}).Select("id").Where("created_at <= ?", cutoff)
		if err := tx.Model(&SharedSentence{}).
			Where("batch_id IN (?)", stale).
			Update("batch_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("created_at <= ?", cutoff).Delete(&GenerationBatch{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// StartBatchCleanup prunes batches older than retention until ctx is done.
func StartBatchCleanup(ctx context.Context, gdb *gorm.DB, interval, retention time.Duration) {
	if retention <= 0 {
		return
	}
	if interval <= 0 {
		interval = BatchCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := CleanupGenerationBatches(gdb.WithContext(ctx), time.Now().UTC().Add(-retention))
			if err != nil {
				logger.Error("failed to cleanup generation batches", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("pruned generation batches", "deleted", deleted)
			}
		}
	}
}
