package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storeops/retail-platform/shared/cache"
	"github.com/storeops/retail-platform/shared/models"
)

// FailedSync is an entitlement cache write that could not be applied and
// waits for retry
type FailedSync struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OriginalEventID string            `gorm:"not null" json:"original_event_id"`
	TenantID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Features        models.StringList `gorm:"type:jsonb;default:'[]'" json:"features"`
	ErrorMessage    string            `gorm:"not null" json:"error_message"`
	RetryCount      int               `gorm:"default:0" json:"retry_count"`
	Status          string            `gorm:"default:'pending';index" json:"status"`
	NextRetryAt     *time.Time        `json:"next_retry_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
}

func (FailedSync) TableName() string {
	return "failed_syncs"
}

const (
	syncPending           = "pending"
	syncResolved          = "resolved"
	syncPermanentlyFailed = "permanently_failed"
)

// Retrier re-applies parked entitlement syncs with exponential backoff
type Retrier struct {
	db            *gorm.DB
	cache         *cache.Cache
	maxRetries    int
	batchSize     int
	checkInterval time.Duration
}

// NewRetrier creates a retrier with the standard backoff policy
func NewRetrier(db *gorm.DB, entitlements *cache.Cache) *Retrier {
	return &Retrier{
		db:            db,
		cache:         entitlements,
		maxRetries:    8,
		batchSize:     100,
		checkInterval: 30 * time.Second,
	}
}

// Run processes parked syncs until the process exits
func (r *Retrier) Run() {
	logrus.Info("Starting entitlement sync retrier")

	for {
		var failed []FailedSync
		err := r.db.Where("status = ? AND next_retry_at <= ?", syncPending, time.Now()).
			Order("created_at DESC").
			Limit(r.batchSize).
			Find(&failed).Error
		if err != nil {
			logrus.WithError(err).Warn("Error fetching parked syncs")
			time.Sleep(r.checkInterval)
			continue
		}

		if len(failed) == 0 {
			time.Sleep(r.checkInterval)
			continue
		}

		logrus.Infof("Retrying %d parked entitlement syncs", len(failed))
		for _, f := range failed {
			if err := r.retry(f); err != nil {
				logrus.WithFields(logrus.Fields{
					"sync_id": f.ID,
					"error":   err,
				}).Warn("Failed to retry parked sync")
			}
		}

		time.Sleep(r.checkInterval)
	}
}

// retry re-applies one parked sync, advancing its backoff on failure
func (r *Retrier) retry(failed FailedSync) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := r.cache.SetTenantFeatures(ctx, failed.TenantID, models.FeatureSet(failed.Features))
	cancel()

	now := time.Now()
	if err == nil {
		failed.Status = syncResolved
		failed.ResolvedAt = &now
		failed.UpdatedAt = now
		return r.db.Save(&failed).Error
	}

	failed.RetryCount++
	failed.UpdatedAt = now
	if failed.RetryCount >= r.maxRetries {
		failed.Status = syncPermanentlyFailed
		failed.ResolvedAt = &now
		failed.ErrorMessage = fmt.Sprintf("max retries reached: %s", err.Error())
	} else {
		// 1m, 2m, 4m, 8m, ...
		delay := time.Minute * time.Duration(1<<(failed.RetryCount-1))
		next := now.Add(delay)
		failed.NextRetryAt = &next
		failed.ErrorMessage = err.Error()
	}
	return r.db.Save(&failed).Error
}

// Stats summarizes the parked sync queue for the /stats endpoint
func (r *Retrier) Stats() map[string]interface{} {
	var stats struct {
		Pending           int64 `json:"pending"`
		Resolved          int64 `json:"resolved"`
		PermanentlyFailed int64 `json:"permanently_failed"`
	}

	r.db.Model(&FailedSync{}).Where("status = ?", syncPending).Count(&stats.Pending)
	r.db.Model(&FailedSync{}).Where("status = ?", syncResolved).Count(&stats.Resolved)
	r.db.Model(&FailedSync{}).Where("status = ?", syncPermanentlyFailed).Count(&stats.PermanentlyFailed)

	return map[string]interface{}{
		"retry_stats": stats,
		"config": map[string]interface{}{
			"max_retries":    r.maxRetries,
			"batch_size":     r.batchSize,
			"check_interval": r.checkInterval.String(),
		},
	}
}
