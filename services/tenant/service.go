package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/store"
)

// FeatureCache is the session-metadata side channel updated after a
// feature mutation. The store write is authoritative; cache failures are
// logged and retried by the sync consumer, never fatal.
type FeatureCache interface {
	SetTenantFeatures(ctx context.Context, tenantID uuid.UUID, features models.FeatureSet) error
}

// Service applies tenant administration and entitlement mutations
type Service struct {
	store  store.Store
	cache  FeatureCache
	events events.Emitter
}

// NewService wires the service's dependencies; cache may be nil when
// Redis is unavailable.
func NewService(st store.Store, cache FeatureCache, emitter events.Emitter) *Service {
	return &Service{store: st, cache: cache, events: emitter}
}

// ListTenants returns every tenant, newest-first
func (s *Service) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// GetTenant returns one tenant by id
func (s *Service) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	return s.store.GetTenant(ctx, tenantID)
}

// SetStatus toggles a tenant's lifecycle status
func (s *Service) SetStatus(ctx context.Context, tenantID uuid.UUID, status models.TenantStatus, reason string) (*models.Tenant, error) {
	switch status {
	case models.TenantPending, models.TenantActive, models.TenantInactive:
	default:
		return nil, apperr.Validation("unknown tenant status %q", status)
	}
	if reason == "" {
		return nil, apperr.Validation("a reason is required for status changes")
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == status {
		return tenant, nil
	}

	tenant.Status = status
	if err := s.store.SaveTenant(ctx, tenant); err != nil {
		return nil, err
	}

	s.events.Emit(events.NewEvent(events.TypeTenantStatusChanged, tenantID, map[string]interface{}{
		"status": string(status),
		"reason": reason,
	}))
	return tenant, nil
}

// Enable adds a feature to a tenant's entitlement set. Enabling a feature
// the tenant already has is a successful no-op.
func (s *Service) Enable(ctx context.Context, tenantID uuid.UUID, featureID, reason string) (models.FeatureSet, error) {
	if err := validateMutation(featureID, reason); err != nil {
		return nil, err
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Features.Contains(featureID) {
		return tenant.Features.Clone(), nil
	}

	tenant.Features = tenant.Features.With(featureID)
	if err := s.store.SaveTenant(ctx, tenant); err != nil {
		return nil, err
	}

	s.propagate(ctx, tenant, featureID, "enable", reason)
	return tenant.Features.Clone(), nil
}

// Disable removes a feature from a tenant's entitlement set. Core
// features are rejected outright; removing an absent feature is a
// successful no-op.
func (s *Service) Disable(ctx context.Context, tenantID uuid.UUID, featureID, reason string) (models.FeatureSet, error) {
	if err := validateMutation(featureID, reason); err != nil {
		return nil, err
	}
	if models.IsCoreFeature(featureID) {
		return nil, apperr.ProtectedFeature(featureID)
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Features.Contains(featureID) {
		return tenant.Features.Clone(), nil
	}

	tenant.Features = tenant.Features.Without(featureID)
	if err := s.store.SaveTenant(ctx, tenant); err != nil {
		return nil, err
	}

	s.propagate(ctx, tenant, featureID, "disable", reason)
	return tenant.Features.Clone(), nil
}

// BulkResult is the per-tenant outcome of a bulk entitlement update
type BulkResult struct {
	TenantID uuid.UUID         `json:"tenant_id"`
	Features models.FeatureSet `json:"features,omitempty"`
	Error    string            `json:"error,omitempty"`
	Success  bool              `json:"success"`
}

// BulkUpdate applies feature additions and removals independently per
// tenant. One tenant's failure never aborts the rest of the batch.
func (s *Service) BulkUpdate(ctx context.Context, tenantIDs []uuid.UUID, add, remove []string, reason string) ([]BulkResult, error) {
	if reason == "" {
		return nil, apperr.Validation("a reason is required for feature changes")
	}
	if len(tenantIDs) == 0 {
		return nil, apperr.Validation("at least one tenant is required")
	}

	results := make([]BulkResult, 0, len(tenantIDs))
	for _, tenantID := range tenantIDs {
		features, err := s.applyBulk(ctx, tenantID, add, remove, reason)
		if err != nil {
			results = append(results, BulkResult{TenantID: tenantID, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{TenantID: tenantID, Features: features, Success: true})
	}
	return results, nil
}

// applyBulk validates and applies one tenant's changes as a unit: any
// protected or unknown feature rejects the whole tenant before mutation.
func (s *Service) applyBulk(ctx context.Context, tenantID uuid.UUID, add, remove []string, reason string) (models.FeatureSet, error) {
	for _, featureID := range add {
		if !models.IsKnownFeature(featureID) {
			return nil, apperr.Validation("unknown feature %q", featureID)
		}
	}
	for _, featureID := range remove {
		if !models.IsKnownFeature(featureID) {
			return nil, apperr.Validation("unknown feature %q", featureID)
		}
		if models.IsCoreFeature(featureID) {
			return nil, apperr.ProtectedFeature(featureID)
		}
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	updated := tenant.Features.Clone()
	for _, featureID := range add {
		updated = updated.With(featureID)
	}
	for _, featureID := range remove {
		updated = updated.Without(featureID)
	}

	tenant.Features = updated
	if err := s.store.SaveTenant(ctx, tenant); err != nil {
		return nil, err
	}

	s.propagate(ctx, tenant, "", "bulk", reason)
	return updated.Clone(), nil
}

func validateMutation(featureID, reason string) error {
	if featureID == "" {
		return apperr.Validation("feature id is required")
	}
	if reason == "" {
		return apperr.Validation("a reason is required for feature changes")
	}
	if !models.IsKnownFeature(featureID) {
		return apperr.Validation("unknown feature %q", featureID)
	}
	return nil
}

// propagate mirrors the new entitlement set into the session cache and
// notifies observers. Cache failures are logged; the feature_updated
// event lets the sync consumer re-apply the set with retries.
func (s *Service) propagate(ctx context.Context, tenant *models.Tenant, featureID, action, reason string) {
	if s.cache != nil {
		if err := s.cache.SetTenantFeatures(ctx, tenant.ID, tenant.Features); err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id": tenant.ID,
				"error":     err,
			}).Warn("Failed to propagate feature set to session cache")
		}
	}

	payload := map[string]interface{}{
		"features": tenant.Features.Sorted(),
		"action":   action,
		"reason":   reason,
	}
	if featureID != "" {
		payload["feature_id"] = featureID
	}
	s.events.Emit(events.NewEvent(events.TypeFeatureUpdated, tenant.ID, payload))
}
