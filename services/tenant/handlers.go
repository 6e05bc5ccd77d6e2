package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/utils"
)

// FeatureMutationBody is a single enable/disable request
type FeatureMutationBody struct {
	FeatureID string `json:"feature_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

// BulkUpdateBody applies additions and removals across many tenants
type BulkUpdateBody struct {
	TenantIDs []uuid.UUID `json:"tenant_ids" binding:"required"`
	Add       []string    `json:"add"`
	Remove    []string    `json:"remove"`
	Reason    string      `json:"reason" binding:"required"`
}

// StatusBody toggles a tenant's lifecycle status
type StatusBody struct {
	Status string `json:"status" binding:"required,oneof=pending active inactive"`
	Reason string `json:"reason" binding:"required"`
}

// handleListTenants handles listing all tenants (operator only)
func handleListTenants(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenants, err := svc.ListTenants(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Tenants retrieved", tenants)
	}
}

// handleGetTenant handles fetching a single tenant
func handleGetTenant(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		tenant, err := svc.GetTenant(c.Request.Context(), tenantID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Tenant retrieved", tenant)
	}
}

// handleSetStatus handles activating/deactivating a tenant (operator only)
func handleSetStatus(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		var body StatusBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. Status must be pending, active or inactive")
			return
		}

		tenant, err := svc.SetStatus(c.Request.Context(), tenantID, models.TenantStatus(body.Status), body.Reason)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Tenant status updated", tenant)
	}
}

// handleEnableFeature handles enabling one feature for a tenant (operator only)
func handleEnableFeature(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		var body FeatureMutationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. feature_id and reason are required")
			return
		}

		features, err := svc.Enable(c.Request.Context(), tenantID, body.FeatureID, body.Reason)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Feature enabled", gin.H{"features": features})
	}
}

// handleDisableFeature handles disabling one feature for a tenant (operator only)
func handleDisableFeature(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		var body FeatureMutationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. feature_id and reason are required")
			return
		}

		features, err := svc.Disable(c.Request.Context(), tenantID, body.FeatureID, body.Reason)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Feature disabled", gin.H{"features": features})
	}
}

// handleBulkUpdate handles batch feature changes across tenants (operator only)
func handleBulkUpdate(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body BulkUpdateBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. tenant_ids and reason are required")
			return
		}

		results, err := svc.BulkUpdate(c.Request.Context(), body.TenantIDs, body.Add, body.Remove, body.Reason)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Bulk feature update processed", gin.H{"results": results})
	}
}

// handleFeatureCatalog returns the static feature catalog
func handleFeatureCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OKResponse(c, "Feature catalog retrieved", models.CatalogEntries())
	}
}
