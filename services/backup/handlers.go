package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/utils"
)

// TriggerBackupBody optionally labels the backup; type defaults to full
type TriggerBackupBody struct {
	BackupType string `json:"backup_type" binding:"omitempty,oneof=full selective"`
}

// RestoreBody selects a backup to replay and optionally a category subset
type RestoreBody struct {
	BackupID    uuid.UUID `json:"backup_id" binding:"required"`
	RestoreType string    `json:"restore_type" binding:"required,oneof=full selective"`
	DataTypes   []string  `json:"data_types"`
}

// handleTriggerBackup handles snapshotting a tenant's dataset
func handleTriggerBackup(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("tenant_id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		var body TriggerBackupBody
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				utils.BadRequestResponse(c, "Invalid request format. backup_type must be full or selective")
				return
			}
		}

		backup, err := svc.Trigger(c.Request.Context(), tenantID, models.BackupType(body.BackupType))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Backup completed", backup)
	}
}

// handleBackupHistory handles listing a tenant's backups, newest-first
func handleBackupHistory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("tenant_id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		backups, err := svc.History(c.Request.Context(), &tenantID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Backups retrieved", backups)
	}
}

// handleAllBackups handles the platform-wide backup listing (operator only)
func handleAllBackups(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		backups, err := svc.History(c.Request.Context(), nil)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Backups retrieved", backups)
	}
}

// handleRestore handles replaying a backup into the live dataset
func handleRestore(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("tenant_id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		var body RestoreBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. restore_type must be full or selective")
			return
		}

		restore, err := svc.Restore(c.Request.Context(), RestoreInput{
			TenantID:  tenantID,
			BackupID:  body.BackupID,
			Type:      models.RestoreType(body.RestoreType),
			DataTypes: body.DataTypes,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Restore completed", restore)
	}
}
