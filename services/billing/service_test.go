package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/store"
)

// failingSaveStore wraps the memory store to make tenant updates fail,
// exercising the non-atomic ledger/tenant write pair.
type failingSaveStore struct {
	*store.Memory
	failSaves bool
}

func (f *failingSaveStore) SaveTenant(ctx context.Context, tenant *models.Tenant) error {
	if f.failSaves {
		return fmt.Errorf("connection reset by peer")
	}
	return f.Memory.SaveTenant(ctx, tenant)
}

func newTestService() (*Service, *store.Memory, *events.Recorder) {
	st := store.NewMemory()
	rec := &events.Recorder{}
	return NewService(st, rec), st, rec
}

func seedTenant(t *testing.T, st store.Store) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		ID:            uuid.New(),
		Name:          "Ledger Shop",
		Email:         "owner@ledger.test",
		Plan:          models.PlanBasic,
		Status:        models.TenantActive,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, st.CreateTenant(context.Background(), tenant))
	return tenant
}

func TestRecordValidation(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st)

	_, err := svc.Record(ctx, RecordInput{TenantID: tenant.ID, Amount: decimal.Zero, Type: models.PaymentUpfront})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Record(ctx, RecordInput{TenantID: tenant.ID, Amount: decimal.NewFromInt(-10), Type: models.PaymentUpfront})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Record(ctx, RecordInput{TenantID: tenant.ID, Amount: decimal.NewFromInt(100), Type: "donation"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Record(ctx, RecordInput{TenantID: uuid.New(), Amount: decimal.NewFromInt(100), Type: models.PaymentUpfront})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	payments, err := st.ListPayments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, payments, "rejected payments never reach the ledger")
}

func TestMaintenancePaymentSetsRenewalSixMonthsOut(t *testing.T) {
	svc, st, rec := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st)

	paidAt := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return paidAt }

	result, err := svc.Record(ctx, RecordInput{
		TenantID: tenant.ID,
		Amount:   decimal.NewFromInt(100),
		Type:     models.PaymentMaintenance,
		Method:   "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentPaid), result.PaymentStatus)
	require.NotNil(t, result.NextPaymentDate)
	assert.Equal(t, time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC), *result.NextPaymentDate)

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.True(t, stored.MaintenanceFeePaid)
	assert.False(t, stored.UpfrontFeePaid)
	require.NotNil(t, stored.LastPaymentDate)
	assert.Equal(t, paidAt, *stored.LastPaymentDate)
	require.NotNil(t, stored.NextPaymentDate)
	assert.Equal(t, paidAt.AddDate(0, 6, 0), *stored.NextPaymentDate)

	recorded := rec.ByType(events.TypePaymentRecorded)
	require.Len(t, recorded, 1)
	assert.Equal(t, "maintenance", recorded[0].Payload["payment_type"])
}

func TestUpfrontPaymentSetsFlagWithoutRenewal(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st)

	_, err := svc.Record(ctx, RecordInput{
		TenantID: tenant.ID,
		Amount:   decimal.NewFromInt(500),
		Type:     models.PaymentUpfront,
	})
	require.NoError(t, err)

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpfrontFeePaid)
	assert.False(t, stored.MaintenanceFeePaid)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Nil(t, stored.NextPaymentDate, "upfront payments do not move the renewal date")
}

func TestTenantUpdateFailurePreservesLedger(t *testing.T) {
	memory := store.NewMemory()
	st := &failingSaveStore{Memory: memory}
	rec := &events.Recorder{}
	svc := NewService(st, rec)
	ctx := context.Background()
	tenant := seedTenant(t, memory)

	st.failSaves = true
	_, err := svc.Record(ctx, RecordInput{
		TenantID: tenant.ID,
		Amount:   decimal.NewFromInt(100),
		Type:     models.PaymentMaintenance,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDependency))

	payments, listErr := memory.ListPayments(ctx, &tenant.ID)
	require.NoError(t, listErr)
	assert.Len(t, payments, 1, "the ledger append is never rolled back")

	stored, getErr := memory.GetTenant(ctx, tenant.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus, "drift left for the reconcile sweep")
	assert.Empty(t, rec.ByType(events.TypePaymentRecorded))
}

func TestHistoryIsNewestFirstAndTenantScoped(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	one := seedTenant(t, st)
	two := seedTenant(t, st)

	for i, amount := range []int64{100, 200, 300} {
		target := one.ID
		if i == 1 {
			target = two.ID
		}
		_, err := svc.Record(ctx, RecordInput{
			TenantID: target,
			Amount:   decimal.NewFromInt(amount),
			Type:     models.PaymentMaintenance,
		})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, &one.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(300)), "newest entry first")
	assert.True(t, history[1].Amount.Equal(decimal.NewFromInt(100)))

	all, err := svc.History(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.History(ctx, &uuid.UUID{})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestDueSoon(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }

	in10 := now.AddDate(0, 0, 10)
	in40 := now.AddDate(0, 0, 40)

	due := seedTenant(t, st)
	due.NextPaymentDate = &in10
	require.NoError(t, st.SaveTenant(ctx, due))

	far := seedTenant(t, st)
	far.NextPaymentDate = &in40
	require.NoError(t, st.SaveTenant(ctx, far))

	inactive := seedTenant(t, st)
	inactive.Status = models.TenantInactive
	inactive.NextPaymentDate = &in10
	require.NoError(t, st.SaveTenant(ctx, inactive))

	results, err := svc.DueSoon(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, due.ID, results[0].Tenant.ID)
	assert.LessOrEqual(t, results[0].DaysUntil, 10)
}

func TestReconcileRepairsDrift(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	tenant := seedTenant(t, st)

	// A ledger entry exists but the tenant's derived fields were never
	// updated, as if the second write of record had failed.
	paidAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreatePayment(ctx, &models.Payment{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Amount:    decimal.NewFromInt(100),
		Type:      models.PaymentMaintenance,
		CreatedAt: paidAt,
	}))

	results, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tenant.ID, results[0].TenantID)
	assert.True(t, results[0].Repaired)

	stored, err := st.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.True(t, stored.MaintenanceFeePaid)
	require.NotNil(t, stored.NextPaymentDate)
	assert.Equal(t, paidAt.AddDate(0, 6, 0), *stored.NextPaymentDate)

	again, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "a reconciled tenant has no further drift")
}
