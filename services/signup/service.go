package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/credentials"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/store"
)

// Service runs the signup request workflow: submission, review listing,
// and the single pending→approved/rejected transition. Approval is the
// only code path that creates a tenant.
type Service struct {
	store  store.Store
	creds  credentials.Provider
	events events.Emitter
}

// NewService wires the workflow's dependencies
func NewService(st store.Store, creds credentials.Provider, emitter events.Emitter) *Service {
	return &Service{store: st, creds: creds, events: emitter}
}

// SubmitInput is a prospective tenant's application
type SubmitInput struct {
	Email            string
	CredentialSecret string
	Config           models.BusinessConfig
}

// Submit persists a new pending signup request
func (s *Service) Submit(ctx context.Context, in SubmitInput) (uuid.UUID, error) {
	if in.Email == "" {
		return uuid.Nil, apperr.Validation("applicant email is required")
	}
	if in.CredentialSecret == "" {
		return uuid.Nil, apperr.Validation("credential secret is required")
	}
	if in.Config.BusinessName == "" {
		return uuid.Nil, apperr.Validation("business name is required")
	}

	req := &models.SignupRequest{
		ID:               uuid.New(),
		Email:            in.Email,
		CredentialSecret: in.CredentialSecret,
		Config:           in.Config,
		Status:           models.SignupPending,
	}
	if err := s.store.CreateSignupRequest(ctx, req); err != nil {
		return uuid.Nil, err
	}
	return req.ID, nil
}

// List returns signup requests newest-first, filtered by status or "all"
func (s *Service) List(ctx context.Context, status string) ([]models.SignupRequest, error) {
	switch status {
	case store.StatusAll,
		string(models.SignupPending),
		string(models.SignupApproved),
		string(models.SignupRejected):
	default:
		return nil, apperr.Validation("unknown status filter %q", status)
	}
	return s.store.ListSignupRequests(ctx, status)
}

// ApproveInput carries the operator's plan assignment. Nil fees fall back
// to the plan's default pricing.
type ApproveInput struct {
	Plan           models.Plan
	UpfrontFee     *decimal.Decimal
	MaintenanceFee *decimal.Decimal
	ApprovedBy     string
}

// ApproveResult reports the created tenant and whether the owner login
// could be provisioned.
type ApproveResult struct {
	BusinessID       uuid.UUID `json:"business_id"`
	CredentialIssued bool      `json:"credential_issued"`
	Warning          string    `json:"warning,omitempty"`
}

// Approve transitions a pending request to approved, creating the tenant
// seeded with the plan's default feature set. Credential provisioning runs
// after the commit; its failure downgrades to a warning and is never
// rolled back.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, in ApproveInput) (*ApproveResult, error) {
	defaults, ok := models.DefaultsForPlan(in.Plan)
	if !ok {
		return nil, apperr.Validation("unknown plan %q", in.Plan)
	}

	req, err := s.store.GetSignupRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, apperr.InvalidState("signup request %s is already %s", requestID, req.Status)
	}

	upfront := defaults.UpfrontFee
	if in.UpfrontFee != nil {
		upfront = *in.UpfrontFee
	}
	maintenance := defaults.MaintenanceFee
	if in.MaintenanceFee != nil {
		maintenance = *in.MaintenanceFee
	}

	tenant := &models.Tenant{
		ID:             uuid.New(),
		Name:           req.Config.BusinessName,
		Email:          req.Email,
		BusinessType:   req.Config.BusinessType,
		Plan:           in.Plan,
		Status:         models.TenantActive,
		PaymentStatus:  models.PaymentPending,
		Features:       defaults.Features,
		UpfrontFee:     upfront,
		MaintenanceFee: maintenance,
	}

	// The secret is consumed here and cleared from the stored request in
	// the same transaction that flips it to approved.
	secret := req.CredentialSecret
	now := time.Now()

	err = s.store.Transact(ctx, func(tx store.Store) error {
		if err := tx.CreateTenant(ctx, tenant); err != nil {
			return err
		}
		req.Status = models.SignupApproved
		req.ApprovedAt = &now
		req.ApprovedBy = in.ApprovedBy
		req.TenantID = &tenant.ID
		req.CredentialSecret = ""
		return tx.SaveSignupRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	result := &ApproveResult{BusinessID: tenant.ID, CredentialIssued: true}

	subjectID, provErr := s.creds.Provision(req.Email, secret, tenant.ID, tenant.Features)
	if provErr != nil {
		// Partial-success policy: the business exists either way. The
		// operator re-issues the credential out of band.
		result.CredentialIssued = false
		result.Warning = "business created but owner login could not be provisioned: " + provErr.Error()
		logrus.WithFields(logrus.Fields{
			"tenant_id": tenant.ID,
			"email":     req.Email,
			"error":     provErr,
		}).Warn("Credential provisioning failed after approval")
	} else {
		owner := &models.User{
			SubjectID: subjectID,
			TenantID:  tenant.ID,
			Email:     req.Email,
			Role:      models.RoleOwner,
		}
		if err := s.store.CreateUser(ctx, owner); err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id": tenant.ID,
				"error":     err,
			}).Warn("Failed to record provisioned owner login")
		}
	}

	s.events.Emit(events.NewEvent(events.TypeTenantCreated, tenant.ID, map[string]interface{}{
		"request_id": requestID.String(),
		"plan":       string(in.Plan),
	}))

	return result, nil
}

// Reject transitions a pending request to rejected. No tenant is created.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, reason string) error {
	req, err := s.store.GetSignupRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.IsTerminal() {
		return apperr.InvalidState("signup request %s is already %s", requestID, req.Status)
	}

	now := time.Now()
	req.Status = models.SignupRejected
	req.RejectionReason = reason
	req.RejectedAt = &now
	req.CredentialSecret = ""
	return s.store.SaveSignupRequest(ctx, req)
}
