package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/models"
)

// gormStore is the Postgres-backed Store
type gormStore struct {
	db *gorm.DB
}

// NewGorm wraps a GORM connection as a Store
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Migrate creates or updates every table the platform persists
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.SignupRequest{},
		&models.Payment{},
		&models.Backup{},
		&models.RestoreRequest{},
		&models.Product{},
		&models.Customer{},
		&models.Worker{},
		&models.Sale{},
	)
}

func (s *gormStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := s.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return apperr.Dependency("failed to create tenant", err)
	}
	return nil
}

func (s *gormStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %s not found", id)
		}
		return nil, apperr.Dependency("failed to fetch tenant", err)
	}
	return &tenant, nil
}

func (s *gormStore) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tenants).Error; err != nil {
		return nil, apperr.Dependency("failed to list tenants", err)
	}
	return tenants, nil
}

func (s *gormStore) SaveTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := s.db.WithContext(ctx).Save(tenant).Error; err != nil {
		return apperr.Dependency("failed to save tenant", err)
	}
	return nil
}

func (s *gormStore) CreateSignupRequest(ctx context.Context, req *models.SignupRequest) error {
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return apperr.Dependency("failed to create signup request", err)
	}
	return nil
}

func (s *gormStore) GetSignupRequest(ctx context.Context, id uuid.UUID) (*models.SignupRequest, error) {
	var req models.SignupRequest
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("signup request %s not found", id)
		}
		return nil, apperr.Dependency("failed to fetch signup request", err)
	}
	return &req, nil
}

func (s *gormStore) ListSignupRequests(ctx context.Context, status string) ([]models.SignupRequest, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != StatusAll {
		q = q.Where("status = ?", status)
	}
	var reqs []models.SignupRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, apperr.Dependency("failed to list signup requests", err)
	}
	return reqs, nil
}

func (s *gormStore) SaveSignupRequest(ctx context.Context, req *models.SignupRequest) error {
	if err := s.db.WithContext(ctx).Save(req).Error; err != nil {
		return apperr.Dependency("failed to save signup request", err)
	}
	return nil
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperr.Dependency("failed to create user", err)
	}
	return nil
}

func (s *gormStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return apperr.Dependency("failed to record payment", err)
	}
	return nil
}

func (s *gormStore) ListPayments(ctx context.Context, tenantID *uuid.UUID) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, apperr.Dependency("failed to list payments", err)
	}
	return payments, nil
}

func (s *gormStore) CreateBackup(ctx context.Context, backup *models.Backup) error {
	if err := s.db.WithContext(ctx).Create(backup).Error; err != nil {
		return apperr.Dependency("failed to create backup record", err)
	}
	return nil
}

func (s *gormStore) GetBackup(ctx context.Context, id uuid.UUID) (*models.Backup, error) {
	var backup models.Backup
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("backup %s not found", id)
		}
		return nil, apperr.Dependency("failed to fetch backup record", err)
	}
	return &backup, nil
}

func (s *gormStore) SaveBackup(ctx context.Context, backup *models.Backup) error {
	if err := s.db.WithContext(ctx).Save(backup).Error; err != nil {
		return apperr.Dependency("failed to save backup record", err)
	}
	return nil
}

func (s *gormStore) ListBackups(ctx context.Context, tenantID *uuid.UUID) ([]models.Backup, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	var backups []models.Backup
	if err := q.Find(&backups).Error; err != nil {
		return nil, apperr.Dependency("failed to list backups", err)
	}
	return backups, nil
}

func (s *gormStore) CreateRestore(ctx context.Context, restore *models.RestoreRequest) error {
	if err := s.db.WithContext(ctx).Create(restore).Error; err != nil {
		return apperr.Dependency("failed to create restore request", err)
	}
	return nil
}

func (s *gormStore) SaveRestore(ctx context.Context, restore *models.RestoreRequest) error {
	if err := s.db.WithContext(ctx).Save(restore).Error; err != nil {
		return apperr.Dependency("failed to save restore request", err)
	}
	return nil
}

func (s *gormStore) ListProducts(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&products).Error; err != nil {
		return nil, apperr.Dependency("failed to list products", err)
	}
	return products, nil
}

func (s *gormStore) ListCustomers(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&customers).Error; err != nil {
		return nil, apperr.Dependency("failed to list customers", err)
	}
	return customers, nil
}

func (s *gormStore) ListWorkers(ctx context.Context, tenantID uuid.UUID) ([]models.Worker, error) {
	var workers []models.Worker
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&workers).Error; err != nil {
		return nil, apperr.Dependency("failed to list workers", err)
	}
	return workers, nil
}

func (s *gormStore) ListSales(ctx context.Context, tenantID uuid.UUID) ([]models.Sale, error) {
	var sales []models.Sale
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&sales).Error; err != nil {
		return nil, apperr.Dependency("failed to list sales", err)
	}
	return sales, nil
}

// upsert inserts rows replacing existing ones by primary key, which makes
// restore replays idempotent.
func (s *gormStore) upsert(ctx context.Context, what string, rows interface{}) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rows).Error
	if err != nil {
		return apperr.Dependency("failed to upsert "+what, err)
	}
	return nil
}

func (s *gormStore) UpsertTenant(ctx context.Context, tenant *models.Tenant) error {
	return s.upsert(ctx, "tenant", tenant)
}

func (s *gormStore) UpsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return s.upsert(ctx, "products", &products)
}

func (s *gormStore) UpsertCustomers(ctx context.Context, customers []models.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	return s.upsert(ctx, "customers", &customers)
}

func (s *gormStore) UpsertWorkers(ctx context.Context, workers []models.Worker) error {
	if len(workers) == 0 {
		return nil
	}
	return s.upsert(ctx, "workers", &workers)
}

func (s *gormStore) UpsertSales(ctx context.Context, sales []models.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	return s.upsert(ctx, "sales", &sales)
}

func (s *gormStore) UpsertPayments(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return s.upsert(ctx, "payments", &payments)
}

func (s *gormStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
