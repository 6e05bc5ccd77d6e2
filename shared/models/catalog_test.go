package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreFeaturesAreProtectedAndKnown(t *testing.T) {
	core := CoreFeatures()
	assert.ElementsMatch(t, FeatureSet{FeatureDashboard, FeatureProducts, FeatureSales, FeatureCustomers}, core)

	for _, id := range core {
		assert.True(t, IsCoreFeature(id), id)
		assert.True(t, IsKnownFeature(id), id)
	}

	assert.False(t, IsCoreFeature("payroll"))
	assert.False(t, IsCoreFeature("no-such-feature"))
	assert.False(t, IsKnownFeature("no-such-feature"))
}

func TestEveryPlanIncludesTheCoreSet(t *testing.T) {
	for _, plan := range []Plan{PlanBasic, PlanPro, PlanEnterprise} {
		defaults, ok := DefaultsForPlan(plan)
		require.True(t, ok, plan)
		assert.True(t, defaults.Features.ContainsAll(CoreFeatures()), plan)

		for _, id := range defaults.Features {
			assert.True(t, IsKnownFeature(id), "%s grants unknown feature %s", plan, id)
		}
	}

	_, ok := DefaultsForPlan("platinum")
	assert.False(t, ok)
}

func TestPlanTiersAreSupersets(t *testing.T) {
	basic, _ := DefaultsForPlan(PlanBasic)
	pro, _ := DefaultsForPlan(PlanPro)
	enterprise, _ := DefaultsForPlan(PlanEnterprise)

	assert.True(t, pro.Features.ContainsAll(basic.Features))
	assert.True(t, enterprise.Features.ContainsAll(pro.Features))
	assert.True(t, pro.UpfrontFee.GreaterThan(basic.UpfrontFee))
	assert.True(t, enterprise.MaintenanceFee.GreaterThan(pro.MaintenanceFee))
}

func TestDefaultsForPlanReturnsIndependentCopies(t *testing.T) {
	first, _ := DefaultsForPlan(PlanBasic)
	first.Features = first.Features.With("payroll")

	second, _ := DefaultsForPlan(PlanBasic)
	assert.False(t, second.Features.Contains("payroll"), "mutating one copy must not leak into the catalog")
}

func TestCatalogEntryLookup(t *testing.T) {
	entry, ok := CatalogEntry(FeatureDashboard)
	require.True(t, ok)
	assert.Equal(t, CategoryCore, entry.Category)

	_, ok = CatalogEntry("no-such-feature")
	assert.False(t, ok)

	entries := CatalogEntries()
	assert.NotEmpty(t, entries)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		assert.False(t, seen[e.ID], "duplicate catalog id %s", e.ID)
		seen[e.ID] = true
	}
}
