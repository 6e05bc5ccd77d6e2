package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/store"
	"github.com/storeops/retail-platform/shared/utils"
)

// SubmitRequestBody is the public signup submission payload
type SubmitRequestBody struct {
	Email            string                `json:"email" binding:"required,email"`
	CredentialSecret string                `json:"credential_secret" binding:"required,min=8"`
	Config           models.BusinessConfig `json:"config" binding:"required"`
}

// ApproveRequestBody is the operator's approval payload
type ApproveRequestBody struct {
	Plan           string           `json:"plan" binding:"required,oneof=basic pro enterprise"`
	UpfrontFee     *decimal.Decimal `json:"upfront_fee"`
	MaintenanceFee *decimal.Decimal `json:"maintenance_fee"`
}

// RejectRequestBody is the operator's rejection payload
type RejectRequestBody struct {
	Reason string `json:"reason"`
}

// handleSubmitRequest handles public signup submissions
func handleSubmitRequest(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body SubmitRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		id, err := svc.Submit(c.Request.Context(), SubmitInput{
			Email:            body.Email,
			CredentialSecret: body.CredentialSecret,
			Config:           body.Config,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.CreatedResponse(c, "Signup request submitted", gin.H{"request_id": id})
	}
}

// handleListRequests handles listing signup requests (operator only)
func handleListRequests(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", store.StatusAll)

		requests, err := svc.List(c.Request.Context(), status)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.OKResponse(c, "Signup requests retrieved", requests)
	}
}

// handleApproveRequest handles approving a signup request (operator only)
func handleApproveRequest(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid request id"))
			return
		}

		var body ApproveRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format. Plan must be basic, pro or enterprise")
			return
		}

		result, err := svc.Approve(c.Request.Context(), requestID, ApproveInput{
			Plan:           models.Plan(body.Plan),
			UpfrontFee:     body.UpfrontFee,
			MaintenanceFee: body.MaintenanceFee,
			ApprovedBy:     c.GetString("user_id"),
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		if result.Warning != "" {
			utils.SuccessWithWarning(c, 200, "Signup request approved", result.Warning, result)
			return
		}
		utils.OKResponse(c, "Signup request approved", result)
	}
}

// handleRejectRequest handles rejecting a signup request (operator only)
func handleRejectRequest(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondError(c, apperr.Validation("invalid request id"))
			return
		}

		var body RejectRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if err := svc.Reject(c.Request.Context(), requestID, body.Reason); err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.OKResponse(c, "Signup request rejected", nil)
	}
}
