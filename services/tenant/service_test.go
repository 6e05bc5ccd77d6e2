package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/store"
)

// memCache stands in for the Redis entitlement cache
type memCache struct {
	sets map[uuid.UUID]models.FeatureSet
	fail bool
}

func newMemCache() *memCache {
	return &memCache{sets: make(map[uuid.UUID]models.FeatureSet)}
}

func (m *memCache) SetTenantFeatures(_ context.Context, tenantID uuid.UUID, features models.FeatureSet) error {
	if m.fail {
		return fmt.Errorf("redis unavailable")
	}
	m.sets[tenantID] = features.Clone()
	return nil
}

func newTestService() (*Service, *store.Memory, *memCache, *events.Recorder) {
	st := store.NewMemory()
	cache := newMemCache()
	rec := &events.Recorder{}
	return NewService(st, cache, rec), st, cache, rec
}

func seedTenant(t *testing.T, st *store.Memory, plan models.Plan) *models.Tenant {
	t.Helper()
	defaults, ok := models.DefaultsForPlan(plan)
	require.True(t, ok)
	tenant := &models.Tenant{
		ID:       uuid.New(),
		Name:     "Seeded Shop",
		Email:    "owner@seeded.test",
		Plan:     plan,
		Status:   models.TenantActive,
		Features: defaults.Features,
	}
	require.NoError(t, st.CreateTenant(context.Background(), tenant))
	return tenant
}

func TestEnableValidation(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	_, err := svc.Enable(ctx, tenant.ID, "", "onboarding")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Enable(ctx, tenant.ID, "workers", "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Enable(ctx, tenant.ID, "teleportation", "onboarding")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Enable(ctx, uuid.New(), "workers", "onboarding")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestEnableAddsFeatureAndPropagates(t *testing.T) {
	svc, st, cache, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	features, err := svc.Enable(ctx, tenant.ID, "workers", "customer upgraded")
	require.NoError(t, err)
	assert.True(t, features.Contains("workers"))

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, stored.Features.Contains("workers"))

	assert.True(t, cache.sets[tenant.ID].Contains("workers"))

	updated := rec.ByType(events.TypeFeatureUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, tenant.ID.String(), updated[0].TenantID)
	assert.Equal(t, "workers", updated[0].Payload["feature_id"])
}

func TestProTenantGainsAPIAccess(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanPro)
	require.False(t, tenant.Features.Contains("api-access"))

	features, err := svc.Enable(ctx, tenant.ID, "api-access", "customer purchased add-on")
	require.NoError(t, err)
	assert.True(t, features.Contains("api-access"))

	defaults, _ := models.DefaultsForPlan(models.PlanPro)
	assert.True(t, features.ContainsAll(defaults.Features), "plan defaults are preserved")
}

func TestEnableIsIdempotent(t *testing.T) {
	svc, st, _, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	first, err := svc.Enable(ctx, tenant.ID, "workers", "upgrade")
	require.NoError(t, err)
	second, err := svc.Enable(ctx, tenant.ID, "workers", "upgrade again")
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)

	assert.Len(t, rec.ByType(events.TypeFeatureUpdated), 1, "a no-op enable publishes nothing")
}

func TestDisableRemovesFeature(t *testing.T) {
	svc, st, cache, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanPro)

	features, err := svc.Disable(ctx, tenant.ID, "payroll", "customer downgraded")
	require.NoError(t, err)
	assert.False(t, features.Contains("payroll"))

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.False(t, stored.Features.Contains("payroll"))
	assert.False(t, cache.sets[tenant.ID].Contains("payroll"))
	assert.Len(t, rec.ByType(events.TypeFeatureUpdated), 1)
}

func TestDisableCoreFeatureNeverMutates(t *testing.T) {
	svc, st, _, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	for _, core := range models.CoreFeatures() {
		_, err := svc.Disable(ctx, tenant.ID, core, "trying anyway")
		assert.True(t, apperr.Is(err, apperr.CodeProtectedFeature), core)
	}

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, tenant.Features, stored.Features)
	assert.Empty(t, rec.Events())
}

func TestDisableAbsentFeatureIsNoOp(t *testing.T) {
	svc, st, _, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	features, err := svc.Disable(ctx, tenant.ID, "payroll", "cleanup")
	require.NoError(t, err)
	assert.ElementsMatch(t, tenant.Features, features)
	assert.Empty(t, rec.Events())
}

func TestCacheFailureDoesNotFailMutation(t *testing.T) {
	svc, st, cache, rec := newTestService()
	cache.fail = true
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	_, err := svc.Enable(ctx, tenant.ID, "workers", "upgrade")
	require.NoError(t, err, "the store write is authoritative, cache failure is best-effort")

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, stored.Features.Contains("workers"))
	assert.Len(t, rec.ByType(events.TypeFeatureUpdated), 1, "the event still lets the consumer retry")
}

func TestBulkUpdateValidation(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	_, err := svc.BulkUpdate(ctx, []uuid.UUID{tenant.ID}, []string{"workers"}, nil, "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.BulkUpdate(ctx, nil, []string{"workers"}, nil, "rollout")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	good := seedTenant(t, st, models.PlanBasic)
	missing := uuid.New()

	results, err := svc.BulkUpdate(ctx, []uuid.UUID{good.ID, missing}, []string{"workers"}, nil, "rollout")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.True(t, results[0].Features.Contains("workers"))
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	stored, err := st.GetTenant(ctx, good.ID)
	require.NoError(t, err)
	assert.True(t, stored.Features.Contains("workers"), "the failing tenant does not abort the rest")
}

func TestBulkUpdateCoreRemovalRejectsWholeTenant(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	one := seedTenant(t, st, models.PlanBasic)
	two := seedTenant(t, st, models.PlanBasic)

	results, err := svc.BulkUpdate(ctx, []uuid.UUID{one.ID, two.ID}, []string{"workers"}, []string{models.FeatureDashboard}, "cleanup")
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, res := range results {
		assert.False(t, res.Success, "tenant %d", i)
		assert.Contains(t, res.Error, "core feature")
	}

	for _, id := range []uuid.UUID{one.ID, two.ID} {
		stored, err := st.GetTenant(ctx, id)
		require.NoError(t, err)
		assert.False(t, stored.Features.Contains("workers"), "adds are rolled up with the rejected remove")
		assert.True(t, stored.Features.Contains(models.FeatureDashboard))
	}
}

func TestSetStatus(t *testing.T) {
	svc, st, _, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st, models.PlanBasic)

	_, err := svc.SetStatus(ctx, tenant.ID, "frozen", "abuse")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.SetStatus(ctx, tenant.ID, models.TenantInactive, "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	updated, err := svc.SetStatus(ctx, tenant.ID, models.TenantInactive, "payment overdue")
	require.NoError(t, err)
	assert.Equal(t, models.TenantInactive, updated.Status)

	changed := rec.ByType(events.TypeTenantStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "inactive", changed[0].Payload["status"])

	// Same status again is a quiet no-op
	_, err = svc.SetStatus(ctx, tenant.ID, models.TenantInactive, "still overdue")
	require.NoError(t, err)
	assert.Len(t, rec.ByType(events.TypeTenantStatusChanged), 1)
}
