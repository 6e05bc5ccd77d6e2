package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/storeops/retail-platform/shared/models"
)

// SnapshotVersion is the current snapshot document version. Readers
// reject documents with a version they do not understand instead of
// guessing at the layout.
const SnapshotVersion = 1

// Data categories within a snapshot, in restore dependency order: the
// business record first, then referenced entities, then the rows that
// point at them.
const (
	CategoryBusiness  = "business"
	CategoryProducts  = "products"
	CategoryCustomers = "customers"
	CategoryWorkers   = "workers"
	CategorySales     = "sales"
	CategoryPayments  = "payments"
)

// categoryOrder fixes the replay order for every restore
var categoryOrder = []string{
	CategoryBusiness,
	CategoryProducts,
	CategoryCustomers,
	CategoryWorkers,
	CategorySales,
	CategoryPayments,
}

// IsKnownCategory reports whether the name is a snapshot data category
func IsKnownCategory(name string) bool {
	for _, c := range categoryOrder {
		if c == name {
			return true
		}
	}
	return false
}

// Snapshot is the versioned backup document written to blob storage.
// Every row carries its original primary key so restores converge by
// upserting rather than inserting.
type Snapshot struct {
	Version   int       `json:"version"`
	TenantID  uuid.UUID `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`

	Business  *models.Tenant    `json:"business,omitempty"`
	Products  []models.Product  `json:"products,omitempty"`
	Customers []models.Customer `json:"customers,omitempty"`
	Workers   []models.Worker   `json:"workers,omitempty"`
	Sales     []models.Sale     `json:"sales,omitempty"`
	Payments  []models.Payment  `json:"payments,omitempty"`
}

// restoreOrder returns the categories a restore should replay, in fixed
// dependency order. A nil or empty selection means the full snapshot.
func restoreOrder(selection []string) []string {
	if len(selection) == 0 {
		out := make([]string, len(categoryOrder))
		copy(out, categoryOrder)
		return out
	}
	selected := make(map[string]bool, len(selection))
	for _, c := range selection {
		selected[c] = true
	}
	var out []string
	for _, c := range categoryOrder {
		if selected[c] {
			out = append(out, c)
		}
	}
	return out
}
