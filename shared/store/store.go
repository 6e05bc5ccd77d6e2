// Package store is the persistence capability shared by all services.
// Every component receives a Store explicitly instead of reaching for a
// package-level database handle, so tests can substitute the in-memory
// implementation.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeops/retail-platform/shared/models"
)

// Store is the authoritative persistence surface. List operations return
// newest-first collections. Lookup failures are reported as typed
// not-found errors; infrastructure failures as dependency errors.
type Store interface {
	// Tenant records
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	SaveTenant(ctx context.Context, tenant *models.Tenant) error

	// Signup requests
	CreateSignupRequest(ctx context.Context, req *models.SignupRequest) error
	GetSignupRequest(ctx context.Context, id uuid.UUID) (*models.SignupRequest, error)
	ListSignupRequests(ctx context.Context, status string) ([]models.SignupRequest, error)
	SaveSignupRequest(ctx context.Context, req *models.SignupRequest) error

	// Provisioned logins
	CreateUser(ctx context.Context, user *models.User) error

	// Payment ledger (append-only)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, tenantID *uuid.UUID) ([]models.Payment, error)

	// Backup records
	CreateBackup(ctx context.Context, backup *models.Backup) error
	GetBackup(ctx context.Context, id uuid.UUID) (*models.Backup, error)
	SaveBackup(ctx context.Context, backup *models.Backup) error
	ListBackups(ctx context.Context, tenantID *uuid.UUID) ([]models.Backup, error)

	// Restore requests
	CreateRestore(ctx context.Context, restore *models.RestoreRequest) error
	SaveRestore(ctx context.Context, restore *models.RestoreRequest) error

	// Tenant retail dataset, read for snapshots and upserted by restores
	ListProducts(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error)
	ListCustomers(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error)
	ListWorkers(ctx context.Context, tenantID uuid.UUID) ([]models.Worker, error)
	ListSales(ctx context.Context, tenantID uuid.UUID) ([]models.Sale, error)
	UpsertTenant(ctx context.Context, tenant *models.Tenant) error
	UpsertProducts(ctx context.Context, products []models.Product) error
	UpsertCustomers(ctx context.Context, customers []models.Customer) error
	UpsertWorkers(ctx context.Context, workers []models.Worker) error
	UpsertSales(ctx context.Context, sales []models.Sale) error
	UpsertPayments(ctx context.Context, payments []models.Payment) error

	// Transact runs fn against a transaction-scoped store, committing on
	// nil and rolling back on error.
	Transact(ctx context.Context, fn func(Store) error) error
}

// StatusAll is the list filter accepting every signup request state
const StatusAll = "all"
