package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/utils"
)

// RecordPaymentBody is one payment submission against a tenant
type RecordPaymentBody struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Type      string          `json:"payment_type" binding:"required,oneof=upfront maintenance"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// handleRecordPayment handles appending a payment to a tenant's ledger
func handleRecordPayment(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("tenant_id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		var body RecordPaymentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. payment_type must be upfront or maintenance")
			return
		}

		result, err := svc.Record(c.Request.Context(), RecordInput{
			TenantID:  tenantID,
			Amount:    body.Amount,
			Type:      models.PaymentType(body.Type),
			Method:    body.Method,
			Reference: body.Reference,
			Notes:     body.Notes,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.CreatedResponse(c, "Payment recorded", result)
	}
}

// handlePaymentHistory handles listing a tenant's ledger, newest-first
func handlePaymentHistory(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("tenant_id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid tenant id"))
			return
		}

		payments, err := svc.History(c.Request.Context(), &tenantID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Payment history retrieved", payments)
	}
}

// handleAllPayments handles the platform-wide ledger view (operator only)
func handleAllPayments(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := svc.History(c.Request.Context(), nil)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Payment history retrieved", payments)
	}
}

// handleDueSoon handles listing tenants approaching renewal (operator only)
func handleDueSoon(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		due, err := svc.DueSoon(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Tenants due for renewal retrieved", due)
	}
}

// handleReconcile handles the billing drift repair sweep (operator only)
func handleReconcile(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := svc.Reconcile(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Reconciliation sweep completed", gin.H{"results": results})
	}
}
