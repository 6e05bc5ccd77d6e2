package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/storage"
	"github.com/storeops/retail-platform/shared/store"
)

// Service runs tenant dataset backups and restores. A backup record is
// created pending and always driven to completed or failed before the
// call returns; restores replay a snapshot through idempotent upserts.
type Service struct {
	store  store.Store
	blobs  storage.Blob
	events events.Emitter
	now    func() time.Time
}

// NewService wires the engine's dependencies
func NewService(st store.Store, blobs storage.Blob, emitter events.Emitter) *Service {
	return &Service{store: st, blobs: blobs, events: emitter, now: time.Now}
}

// Trigger snapshots the tenant's full dataset into blob storage. The
// returned record is completed or failed, never pending. The backup type
// is recorded for the restore side; the snapshot always carries the full
// dataset so a selective restore can pick categories later.
func (s *Service) Trigger(ctx context.Context, tenantID uuid.UUID, backupType models.BackupType) (*models.Backup, error) {
	switch backupType {
	case models.BackupFull, models.BackupSelective:
	case "":
		backupType = models.BackupFull
	default:
		return nil, apperr.Validation("unknown backup type %q", backupType)
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	backup := &models.Backup{
		ID:       uuid.New(),
		TenantID: tenantID,
		Type:     backupType,
		Status:   models.BackupPending,
	}
	if err := s.store.CreateBackup(ctx, backup); err != nil {
		return nil, err
	}

	snapshot, err := s.gather(ctx, tenant)
	if err != nil {
		return s.markFailed(ctx, backup, fmt.Errorf("failed to read tenant dataset: %w", err))
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return s.markFailed(ctx, backup, fmt.Errorf("failed to encode snapshot: %w", err))
	}

	key := fmt.Sprintf("backups/%s/%s.json", tenantID, backup.ID)
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return s.markFailed(ctx, backup, err)
	}

	backup.Status = models.BackupCompleted
	backup.StorageKey = key
	backup.SizeBytes = int64(len(data))
	if err := s.store.SaveBackup(ctx, backup); err != nil {
		return nil, err
	}

	s.events.Emit(events.NewEvent(events.TypeBackupCompleted, tenantID, map[string]interface{}{
		"backup_id":  backup.ID.String(),
		"size_bytes": backup.SizeBytes,
	}))

	logrus.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"backup_id":  backup.ID,
		"size_bytes": backup.SizeBytes,
	}).Info("Backup completed")
	return backup, nil
}

// gather reads the tenant's full dataset into a snapshot document
func (s *Service) gather(ctx context.Context, tenant *models.Tenant) (*Snapshot, error) {
	products, err := s.store.ListProducts(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	customers, err := s.store.ListCustomers(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	workers, err := s.store.ListWorkers(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	sales, err := s.store.ListSales(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, &tenant.ID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Version:   SnapshotVersion,
		TenantID:  tenant.ID,
		CreatedAt: s.now(),
		Business:  tenant,
		Products:  products,
		Customers: customers,
		Workers:   workers,
		Sales:     sales,
		Payments:  payments,
	}, nil
}

// markFailed drives the backup record to failed with the cause recorded.
// The record must never be left pending.
func (s *Service) markFailed(ctx context.Context, backup *models.Backup, cause error) (*models.Backup, error) {
	backup.Status = models.BackupFailed
	backup.ErrorMessage = cause.Error()
	if saveErr := s.store.SaveBackup(ctx, backup); saveErr != nil {
		logrus.WithFields(logrus.Fields{
			"backup_id": backup.ID,
			"error":     saveErr,
		}).Error("Failed to record backup failure")
	}
	logrus.WithFields(logrus.Fields{
		"tenant_id": backup.TenantID,
		"backup_id": backup.ID,
		"error":     cause,
	}).Warn("Backup failed")
	return backup, apperr.Dependency("backup failed", cause)
}

// History lists backup records newest-first, for one tenant or, with a
// nil tenant id, platform-wide.
func (s *Service) History(ctx context.Context, tenantID *uuid.UUID) ([]models.Backup, error) {
	if tenantID != nil {
		if _, err := s.store.GetTenant(ctx, *tenantID); err != nil {
			return nil, err
		}
	}
	return s.store.ListBackups(ctx, tenantID)
}
