package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/store"
)

// Service maintains the append-only payment ledger and the derived
// billing fields on each tenant. Ledger rows are the source of truth;
// the tenant's flags and renewal date are a cache the reconcile sweep
// can rebuild.
type Service struct {
	store  store.Store
	events events.Emitter
	now    func() time.Time
}

// NewService wires the ledger's dependencies
func NewService(st store.Store, emitter events.Emitter) *Service {
	return &Service{store: st, events: emitter, now: time.Now}
}

// RecordInput is one payment to append to a tenant's ledger
type RecordInput struct {
	TenantID  uuid.UUID
	Amount    decimal.Decimal
	Type      models.PaymentType
	Method    string
	Reference string
	Notes     string
}

// RecordResult reports the appended ledger entry and the tenant's
// updated billing state.
type RecordResult struct {
	PaymentID       uuid.UUID  `json:"payment_id"`
	PaymentStatus   string     `json:"payment_status"`
	NextPaymentDate *time.Time `json:"next_payment_date,omitempty"`
}

// Record appends a payment to the ledger, then updates the tenant's
// derived billing fields. The two writes are deliberately not atomic:
// once the ledger row exists it is never rolled back, and a failed
// tenant update surfaces as a dependency error for the reconcile sweep
// to repair.
func (s *Service) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be positive")
	}
	switch in.Type {
	case models.PaymentUpfront, models.PaymentMaintenance:
	default:
		return nil, apperr.Validation("unknown payment type %q", in.Type)
	}

	tenant, err := s.store.GetTenant(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	payment := &models.Payment{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Amount:    in.Amount,
		Type:      in.Type,
		Method:    in.Method,
		Reference: in.Reference,
		Notes:     in.Notes,
		CreatedAt: now,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	applyPayment(tenant, payment)

	if err := s.store.SaveTenant(ctx, tenant); err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id":  tenant.ID,
			"payment_id": payment.ID,
			"error":      err,
		}).Error("Payment recorded but tenant billing state not updated")
		return nil, apperr.Dependency(
			fmt.Sprintf("payment %s recorded but tenant update failed, reconcile required", payment.ID), err)
	}

	s.events.Emit(events.NewEvent(events.TypePaymentRecorded, tenant.ID, map[string]interface{}{
		"payment_id":   payment.ID.String(),
		"payment_type": string(payment.Type),
		"amount":       payment.Amount.String(),
	}))

	return &RecordResult{
		PaymentID:       payment.ID,
		PaymentStatus:   string(tenant.PaymentStatus),
		NextPaymentDate: tenant.NextPaymentDate,
	}, nil
}

// applyPayment folds one ledger entry into the tenant's derived fields
func applyPayment(tenant *models.Tenant, payment *models.Payment) {
	paidAt := payment.CreatedAt
	tenant.PaymentStatus = models.PaymentPaid
	tenant.LastPaymentDate = &paidAt

	switch payment.Type {
	case models.PaymentUpfront:
		tenant.UpfrontFeePaid = true
	case models.PaymentMaintenance:
		tenant.MaintenanceFeePaid = true
		renewal := models.RenewalAfter(paidAt)
		tenant.NextPaymentDate = &renewal
	}
}

// History returns ledger entries newest-first, for one tenant or, with a
// nil tenant id, platform-wide.
func (s *Service) History(ctx context.Context, tenantID *uuid.UUID) ([]models.Payment, error) {
	if tenantID != nil {
		if _, err := s.store.GetTenant(ctx, *tenantID); err != nil {
			return nil, err
		}
	}
	return s.store.ListPayments(ctx, tenantID)
}

// DueTenant is one tenant approaching its renewal date
type DueTenant struct {
	Tenant    models.Tenant `json:"tenant"`
	DaysUntil int           `json:"days_until_renewal"`
}

// DueSoon lists active tenants whose renewal falls within the next 30 days
func (s *Service) DueSoon(ctx context.Context) ([]DueTenant, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var due []DueTenant
	for _, t := range tenants {
		if !t.IsActive() || !t.IsDueSoon(now) {
			continue
		}
		days, _ := t.DaysUntilRenewal(now)
		due = append(due, DueTenant{Tenant: t, DaysUntil: days})
	}
	return due, nil
}

// ReconcileResult reports one tenant whose derived billing fields drifted
// from its ledger and were rewritten.
type ReconcileResult struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Repaired bool      `json:"repaired"`
	Error    string    `json:"error,omitempty"`
}

// Reconcile recomputes every tenant's derived billing fields from its
// ledger and repairs drift left by interrupted record calls.
func (s *Service) Reconcile(ctx context.Context) ([]ReconcileResult, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	var results []ReconcileResult
	for i := range tenants {
		tenant := &tenants[i]
		payments, err := s.store.ListPayments(ctx, &tenant.ID)
		if err != nil {
			results = append(results, ReconcileResult{TenantID: tenant.ID, Error: err.Error()})
			continue
		}
		if !rederive(tenant, payments) {
			continue
		}
		if err := s.store.SaveTenant(ctx, tenant); err != nil {
			results = append(results, ReconcileResult{TenantID: tenant.ID, Error: err.Error()})
			continue
		}
		logrus.WithField("tenant_id", tenant.ID).Info("Reconciled tenant billing state from ledger")
		results = append(results, ReconcileResult{TenantID: tenant.ID, Repaired: true})
	}
	return results, nil
}

// rederive replays a tenant's ledger (newest-first input) over its
// derived fields, reporting whether anything changed.
func rederive(tenant *models.Tenant, payments []models.Payment) bool {
	derived := *tenant
	derived.PaymentStatus = models.PaymentPending
	derived.UpfrontFeePaid = false
	derived.MaintenanceFeePaid = false
	derived.LastPaymentDate = nil
	derived.NextPaymentDate = nil

	for i := len(payments) - 1; i >= 0; i-- {
		applyPayment(&derived, &payments[i])
	}

	changed := derived.PaymentStatus != tenant.PaymentStatus ||
		derived.UpfrontFeePaid != tenant.UpfrontFeePaid ||
		derived.MaintenanceFeePaid != tenant.MaintenanceFeePaid ||
		!equalTimePtr(derived.LastPaymentDate, tenant.LastPaymentDate) ||
		!equalTimePtr(derived.NextPaymentDate, tenant.NextPaymentDate)
	if changed {
		*tenant = derived
	}
	return changed
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
