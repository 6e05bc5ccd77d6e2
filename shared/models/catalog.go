package models

import "github.com/shopspring/decimal"

// FeatureCategory classifies a catalog feature by tier
type FeatureCategory string

const (
	CategoryCore       FeatureCategory = "core"
	CategoryAdvanced   FeatureCategory = "advanced"
	CategoryEnterprise FeatureCategory = "enterprise"
)

// FeatureEntry describes one feature in the static catalog
type FeatureEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    FeatureCategory `json:"category"`
	Description string          `json:"description"`
}

// Core feature identifiers. Every tenant carries these and they can
// never be disabled.
const (
	FeatureDashboard = "dashboard"
	FeatureProducts  = "products"
	FeatureSales     = "sales"
	FeatureCustomers = "customers"
)

// featureCatalog is the fixed registry of features the platform offers.
// Order here is display order for the admin dashboard.
var featureCatalog = []FeatureEntry{
	{ID: FeatureDashboard, Name: "Dashboard", Category: CategoryCore, Description: "Business overview dashboard"},
	{ID: FeatureProducts, Name: "Products", Category: CategoryCore, Description: "Product and inventory management"},
	{ID: FeatureSales, Name: "Sales", Category: CategoryCore, Description: "Point-of-sale order recording"},
	{ID: FeatureCustomers, Name: "Customers", Category: CategoryCore, Description: "Customer directory"},
	{ID: "workers", Name: "Workers", Category: CategoryAdvanced, Description: "Staff management"},
	{ID: "payroll", Name: "Payroll", Category: CategoryAdvanced, Description: "Worker payroll runs"},
	{ID: "reports", Name: "Reports", Category: CategoryAdvanced, Description: "Sales and inventory reports"},
	{ID: "api-access", Name: "API Access", Category: CategoryAdvanced, Description: "Programmatic API access"},
	{ID: "multi-location", Name: "Multi-Location", Category: CategoryEnterprise, Description: "Multiple store branches"},
	{ID: "advanced-analytics", Name: "Advanced Analytics", Category: CategoryEnterprise, Description: "Trend and cohort analytics"},
	{ID: "priority-support", Name: "Priority Support", Category: CategoryEnterprise, Description: "Dedicated support channel"},
}

// CatalogEntries returns a copy of the full feature catalog
func CatalogEntries() []FeatureEntry {
	out := make([]FeatureEntry, len(featureCatalog))
	copy(out, featureCatalog)
	return out
}

// CatalogEntry looks up a single feature by id
func CatalogEntry(featureID string) (FeatureEntry, bool) {
	for _, e := range featureCatalog {
		if e.ID == featureID {
			return e, true
		}
	}
	return FeatureEntry{}, false
}

// CoreFeatures returns the fixed set of core feature ids
func CoreFeatures() FeatureSet {
	var fs FeatureSet
	for _, e := range featureCatalog {
		if e.Category == CategoryCore {
			fs = append(fs, e.ID)
		}
	}
	return fs
}

// IsCoreFeature reports whether the feature id belongs to the core set
func IsCoreFeature(featureID string) bool {
	e, ok := CatalogEntry(featureID)
	return ok && e.Category == CategoryCore
}

// IsKnownFeature reports whether the feature id exists in the catalog
func IsKnownFeature(featureID string) bool {
	_, ok := CatalogEntry(featureID)
	return ok
}

// PlanDefaults holds the default entitlements and pricing for a plan.
// The admin UI may override the suggested fees at approval time, but the
// feature set always originates here.
type PlanDefaults struct {
	Plan           Plan
	Features       FeatureSet
	UpfrontFee     decimal.Decimal
	MaintenanceFee decimal.Decimal
}

var planDefaults = map[Plan]PlanDefaults{
	PlanBasic: {
		Plan:           PlanBasic,
		Features:       FeatureSet{FeatureDashboard, FeatureProducts, FeatureSales, FeatureCustomers},
		UpfrontFee:     decimal.NewFromInt(500),
		MaintenanceFee: decimal.NewFromInt(100),
	},
	PlanPro: {
		Plan:           PlanPro,
		Features:       FeatureSet{FeatureDashboard, FeatureProducts, FeatureSales, FeatureCustomers, "workers", "payroll", "reports"},
		UpfrontFee:     decimal.NewFromInt(1200),
		MaintenanceFee: decimal.NewFromInt(250),
	},
	PlanEnterprise: {
		Plan:           PlanEnterprise,
		Features:       FeatureSet{FeatureDashboard, FeatureProducts, FeatureSales, FeatureCustomers, "workers", "payroll", "reports", "api-access", "multi-location", "advanced-analytics", "priority-support"},
		UpfrontFee:     decimal.NewFromInt(2500),
		MaintenanceFee: decimal.NewFromInt(500),
	},
}

// DefaultsForPlan returns the default feature set and pricing for a plan
func DefaultsForPlan(plan Plan) (PlanDefaults, bool) {
	d, ok := planDefaults[plan]
	if !ok {
		return PlanDefaults{}, false
	}
	d.Features = d.Features.Clone()
	return d, true
}
