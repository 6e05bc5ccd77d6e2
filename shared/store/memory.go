package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/models"
)

// Memory is an in-memory Store used as a test double and for local
// development without Postgres. Records are kept in insertion order and
// listed newest-first like the GORM implementation. Transact serializes
// on the store mutex and applies directly, with no rollback on error.
type Memory struct {
	mu        sync.Mutex
	tenants   []*models.Tenant
	users     []*models.User
	signups   []*models.SignupRequest
	payments  []*models.Payment
	backups   []*models.Backup
	restores  []*models.RestoreRequest
	products  []*models.Product
	customers []*models.Customer
	workers   []*models.Worker
	sales     []*models.Sale
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func stampID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func stampTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

func (m *Memory) CreateTenant(_ context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stampID(&tenant.ID)
	stampTime(&tenant.CreatedAt)
	cp := *tenant
	m.tenants = append(m.tenants, &cp)
	return nil
}

func (m *Memory) GetTenant(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.ID == id {
			cp := *t
			cp.Features = t.Features.Clone()
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("tenant %s not found", id)
}

func (m *Memory) ListTenants(_ context.Context) ([]models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Tenant, 0, len(m.tenants))
	for i := len(m.tenants) - 1; i >= 0; i-- {
		out = append(out, *m.tenants[i])
	}
	return out, nil
}

func (m *Memory) SaveTenant(_ context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tenants {
		if t.ID == tenant.ID {
			cp := *tenant
			cp.Features = tenant.Features.Clone()
			m.tenants[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("tenant %s not found", tenant.ID)
}

func (m *Memory) CreateSignupRequest(_ context.Context, req *models.SignupRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stampID(&req.ID)
	stampTime(&req.CreatedAt)
	cp := *req
	m.signups = append(m.signups, &cp)
	return nil
}

func (m *Memory) GetSignupRequest(_ context.Context, id uuid.UUID) (*models.SignupRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.signups {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("signup request %s not found", id)
}

func (m *Memory) ListSignupRequests(_ context.Context, status string) ([]models.SignupRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SignupRequest
	for i := len(m.signups) - 1; i >= 0; i-- {
		r := m.signups[i]
		if status == StatusAll || string(r.Status) == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *Memory) SaveSignupRequest(_ context.Context, req *models.SignupRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.signups {
		if r.ID == req.ID {
			cp := *req
			m.signups[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("signup request %s not found", req.ID)
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stampTime(&user.CreatedAt)
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

// Users returns every provisioned login, for test assertions
func (m *Memory) Users() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out
}

func (m *Memory) CreatePayment(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stampID(&payment.ID)
	stampTime(&payment.CreatedAt)
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *Memory) ListPayments(_ context.Context, tenantID *uuid.UUID) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for i := len(m.payments) - 1; i >= 0; i-- {
		p := m.payments[i]
		if tenantID == nil || p.TenantID == *tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *Memory) CreateBackup(_ context.Context, backup *models.Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stampID(&backup.ID)
	stampTime(&backup.CreatedAt)
	cp := *backup
	m.backups = append(m.backups, &cp)
	return nil
}

func (m *Memory) GetBackup(_ context.Context, id uuid.UUID) (*models.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.backups {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("backup %s not found", id)
}

func (m *Memory) SaveBackup(_ context.Context, backup *models.Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.backups {
		if b.ID == backup.ID {
			cp := *backup
			m.backups[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("backup %s not found", backup.ID)
}

func (m *Memory) ListBackups(_ context.Context, tenantID *uuid.UUID) ([]models.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Backup
	for i := len(m.backups) - 1; i >= 0; i-- {
		b := m.backups[i]
		if tenantID == nil || b.TenantID == *tenantID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *Memory) CreateRestore(_ context.Context, restore *models.RestoreRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stampID(&restore.ID)
	stampTime(&restore.CreatedAt)
	cp := *restore
	m.restores = append(m.restores, &cp)
	return nil
}

func (m *Memory) SaveRestore(_ context.Context, restore *models.RestoreRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.restores {
		if r.ID == restore.ID {
			cp := *restore
			m.restores[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("restore request %s not found", restore.ID)
}

// Restores returns every restore request, for test assertions
func (m *Memory) Restores() []models.RestoreRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RestoreRequest, 0, len(m.restores))
	for _, r := range m.restores {
		out = append(out, *r)
	}
	return out
}

func (m *Memory) ListProducts(_ context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *Memory) ListCustomers(_ context.Context, tenantID uuid.UUID) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Customer
	for _, c := range m.customers {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *Memory) ListWorkers(_ context.Context, tenantID uuid.UUID) ([]models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Worker
	for _, w := range m.workers {
		if w.TenantID == tenantID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *Memory) ListSales(_ context.Context, tenantID uuid.UUID) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Sale
	for _, s := range m.sales {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Memory) UpsertTenant(_ context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tenants {
		if t.ID == tenant.ID {
			cp := *tenant
			cp.Features = tenant.Features.Clone()
			m.tenants[i] = &cp
			return nil
		}
	}
	cp := *tenant
	m.tenants = append(m.tenants, &cp)
	return nil
}

func (m *Memory) UpsertProducts(_ context.Context, products []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		cp := p
		replaced := false
		for i, existing := range m.products {
			if existing.ID == p.ID {
				m.products[i] = &cp
				replaced = true
				break
			}
		}
		if !replaced {
			m.products = append(m.products, &cp)
		}
	}
	return nil
}

func (m *Memory) UpsertCustomers(_ context.Context, customers []models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range customers {
		cp := c
		replaced := false
		for i, existing := range m.customers {
			if existing.ID == c.ID {
				m.customers[i] = &cp
				replaced = true
				break
			}
		}
		if !replaced {
			m.customers = append(m.customers, &cp)
		}
	}
	return nil
}

func (m *Memory) UpsertWorkers(_ context.Context, workers []models.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range workers {
		cp := w
		replaced := false
		for i, existing := range m.workers {
			if existing.ID == w.ID {
				m.workers[i] = &cp
				replaced = true
				break
			}
		}
		if !replaced {
			m.workers = append(m.workers, &cp)
		}
	}
	return nil
}

func (m *Memory) UpsertSales(_ context.Context, sales []models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range sales {
		cp := s
		replaced := false
		for i, existing := range m.sales {
			if existing.ID == s.ID {
				m.sales[i] = &cp
				replaced = true
				break
			}
		}
		if !replaced {
			m.sales = append(m.sales, &cp)
		}
	}
	return nil
}

func (m *Memory) UpsertPayments(_ context.Context, payments []models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range payments {
		cp := p
		replaced := false
		for i, existing := range m.payments {
			if existing.ID == p.ID {
				m.payments[i] = &cp
				replaced = true
				break
			}
		}
		if !replaced {
			m.payments = append(m.payments, &cp)
		}
	}
	return nil
}

func (m *Memory) Transact(_ context.Context, fn func(Store) error) error {
	return fn(m)
}
