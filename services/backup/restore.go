package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
)

// RestoreInput selects which backup to replay and how much of it
type RestoreInput struct {
	TenantID  uuid.UUID
	BackupID  uuid.UUID
	Type      models.RestoreType
	DataTypes []string
}

// Restore replays a completed backup into the live store, upserting by
// primary key in fixed dependency order. Categories already applied are
// kept when a later category fails; rerunning the restore converges.
func (s *Service) Restore(ctx context.Context, in RestoreInput) (*models.RestoreRequest, error) {
	switch in.Type {
	case models.RestoreFull:
		if len(in.DataTypes) != 0 {
			return nil, apperr.Validation("a full restore does not take data types")
		}
	case models.RestoreSelective:
		if len(in.DataTypes) == 0 {
			return nil, apperr.Validation("a selective restore requires at least one data type")
		}
		for _, dt := range in.DataTypes {
			if !IsKnownCategory(dt) {
				return nil, apperr.Validation("unknown data type %q", dt)
			}
		}
	default:
		return nil, apperr.Validation("unknown restore type %q", in.Type)
	}

	backup, err := s.store.GetBackup(ctx, in.BackupID)
	if err != nil {
		return nil, err
	}
	if backup.TenantID != in.TenantID {
		return nil, apperr.NotFound("backup %s not found for this business", in.BackupID)
	}
	if backup.Status != models.BackupCompleted {
		return nil, apperr.InvalidState("backup %s is %s, only completed backups can be restored", backup.ID, backup.Status)
	}

	data, err := s.blobs.Get(ctx, backup.StorageKey)
	if err != nil {
		return nil, apperr.Dependency("failed to fetch backup snapshot", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, apperr.CorruptBackup(err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, apperr.CorruptBackup(fmt.Errorf("unsupported snapshot version %d", snapshot.Version))
	}
	if snapshot.TenantID != in.TenantID {
		return nil, apperr.CorruptBackup(fmt.Errorf("snapshot belongs to tenant %s", snapshot.TenantID))
	}

	restore := &models.RestoreRequest{
		ID:        uuid.New(),
		TenantID:  in.TenantID,
		BackupID:  backup.ID,
		Type:      in.Type,
		DataTypes: models.StringList(in.DataTypes),
		Status:    models.RestoreProcessing,
	}
	if err := s.store.CreateRestore(ctx, restore); err != nil {
		return nil, err
	}

	for _, category := range restoreOrder(in.DataTypes) {
		if err := s.applyCategory(ctx, &snapshot, category); err != nil {
			restore.Status = models.RestoreFailed
			restore.ErrorMessage = fmt.Sprintf("failed restoring %s: %v", category, err)
			if saveErr := s.store.SaveRestore(ctx, restore); saveErr != nil {
				logrus.WithFields(logrus.Fields{
					"restore_id": restore.ID,
					"error":      saveErr,
				}).Error("Failed to record restore failure")
			}
			logrus.WithFields(logrus.Fields{
				"tenant_id":  in.TenantID,
				"restore_id": restore.ID,
				"category":   category,
				"error":      err,
			}).Warn("Restore failed mid-replay, applied categories kept")
			return restore, apperr.Dependency(fmt.Sprintf("restore failed while applying %s", category), err)
		}
	}

	now := s.now()
	restore.Status = models.RestoreCompleted
	restore.CompletedAt = &now
	if err := s.store.SaveRestore(ctx, restore); err != nil {
		return nil, err
	}

	s.events.Emit(events.NewEvent(events.TypeDataRestored, in.TenantID, map[string]interface{}{
		"restore_request_id": restore.ID.String(),
		"backup_id":          backup.ID.String(),
		"restore_type":       string(in.Type),
	}))

	logrus.WithFields(logrus.Fields{
		"tenant_id":  in.TenantID,
		"restore_id": restore.ID,
		"backup_id":  backup.ID,
	}).Info("Restore completed")
	return restore, nil
}

// applyCategory upserts one snapshot category into the live store
func (s *Service) applyCategory(ctx context.Context, snapshot *Snapshot, category string) error {
	switch category {
	case CategoryBusiness:
		if snapshot.Business == nil {
			return nil
		}
		return s.store.UpsertTenant(ctx, snapshot.Business)
	case CategoryProducts:
		return s.store.UpsertProducts(ctx, snapshot.Products)
	case CategoryCustomers:
		return s.store.UpsertCustomers(ctx, snapshot.Customers)
	case CategoryWorkers:
		return s.store.UpsertWorkers(ctx, snapshot.Workers)
	case CategorySales:
		return s.store.UpsertSales(ctx, snapshot.Sales)
	case CategoryPayments:
		return s.store.UpsertPayments(ctx, snapshot.Payments)
	default:
		return fmt.Errorf("unknown data category %q", category)
	}
}
