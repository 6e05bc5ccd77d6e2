package main

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/retail-platform/shared/apperr"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
	"github.com/storeops/retail-platform/shared/storage"
	"github.com/storeops/retail-platform/shared/store"
)

// failingUpsertStore makes customer upserts fail, to exercise a restore
// breaking partway through the category order.
type failingUpsertStore struct {
	*store.Memory
	failCustomers bool
}

func (f *failingUpsertStore) UpsertCustomers(ctx context.Context, customers []models.Customer) error {
	if f.failCustomers {
		return fmt.Errorf("deadlock detected")
	}
	return f.Memory.UpsertCustomers(ctx, customers)
}

func completedBackup(t *testing.T, svc *Service, tenantID uuid.UUID) *models.Backup {
	t.Helper()
	backup, err := svc.Trigger(context.Background(), tenantID, models.BackupFull)
	require.NoError(t, err)
	require.Equal(t, models.BackupCompleted, backup.Status)
	return backup
}

func TestRestoreValidation(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	tenant, _, _ := seedDataset(t, st)
	backup := completedBackup(t, svc, tenant.ID)

	tests := []struct {
		name  string
		input RestoreInput
	}{
		{"selective without data types", RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreSelective}},
		{"unknown data type", RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreSelective, DataTypes: []string{"inventory"}}},
		{"full with data types", RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull, DataTypes: []string{CategoryProducts}}},
		{"unknown restore type", RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: "partial"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Restore(ctx, tt.input)
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
		})
	}
}

func TestRestoreWrongTenantIsNotFound(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	owner, _, _ := seedDataset(t, st)
	other, _, _ := seedDataset(t, st)
	backup := completedBackup(t, svc, owner.ID)

	_, err := svc.Restore(ctx, RestoreInput{TenantID: other.ID, BackupID: backup.ID, Type: models.RestoreFull})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound), "another tenant's backup looks nonexistent")

	_, err = svc.Restore(ctx, RestoreInput{TenantID: owner.ID, BackupID: uuid.New(), Type: models.RestoreFull})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestRestoreRequiresCompletedBackup(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	tenant, _, _ := seedDataset(t, st)

	failed := &models.Backup{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Type:     models.BackupFull,
		Status:   models.BackupFailed,
	}
	require.NoError(t, st.CreateBackup(ctx, failed))

	_, err := svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: failed.ID, Type: models.RestoreFull})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
}

func TestRestoreCorruptSnapshot(t *testing.T) {
	svc, st, blobs, _ := newTestService()
	ctx := context.Background()
	tenant, _, _ := seedDataset(t, st)
	backup := completedBackup(t, svc, tenant.ID)

	blobs.Set(backup.StorageKey, []byte("{this is not json"))
	_, err := svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull})
	assert.True(t, apperr.Is(err, apperr.CodeCorruptBackup))

	// A future snapshot version is also unreadable
	wrongVersion, marshalErr := json.Marshal(Snapshot{Version: SnapshotVersion + 1, TenantID: tenant.ID})
	require.NoError(t, marshalErr)
	blobs.Set(backup.StorageKey, wrongVersion)
	_, err = svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull})
	assert.True(t, apperr.Is(err, apperr.CodeCorruptBackup))

	assert.Empty(t, st.Restores(), "corrupt snapshots never start a restore")
}

func TestRestoreFullConverges(t *testing.T) {
	svc, st, _, rec := newTestService()
	ctx := context.Background()
	tenant, product, _ := seedDataset(t, st)
	backup := completedBackup(t, svc, tenant.ID)

	// Drift the live dataset after the snapshot
	drifted := product
	drifted.Name = "Renamed Beans"
	drifted.Stock = 0
	require.NoError(t, st.UpsertProducts(ctx, []models.Product{drifted}))

	extra := models.Customer{ID: uuid.New(), TenantID: tenant.ID, Name: "New Walk-In"}
	require.NoError(t, st.UpsertCustomers(ctx, []models.Customer{extra}))

	restore, err := svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull})
	require.NoError(t, err)
	assert.Equal(t, models.RestoreCompleted, restore.Status)
	require.NotNil(t, restore.CompletedAt)

	products, err := st.ListProducts(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Espresso Beans", products[0].Name, "snapshot rows win by primary key")
	assert.Equal(t, 40, products[0].Stock)

	customers, err := st.ListCustomers(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, customers, 2, "rows absent from the snapshot are left in place")

	// Running the same restore again converges to the same state
	again, err := svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull})
	require.NoError(t, err)
	assert.Equal(t, models.RestoreCompleted, again.Status)

	products, err = st.ListProducts(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Espresso Beans", products[0].Name)

	restored := rec.ByType(events.TypeDataRestored)
	require.Len(t, restored, 2)
	assert.Equal(t, backup.ID.String(), restored[0].Payload["backup_id"])
	assert.Equal(t, restore.ID.String(), restored[0].Payload["restore_request_id"])
	assert.Equal(t, "full", restored[0].Payload["restore_type"])
}

func TestRestoreSelectiveOnlyTouchesSelectedCategories(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()
	tenant, product, customer := seedDataset(t, st)
	backup := completedBackup(t, svc, tenant.ID)

	driftedProduct := product
	driftedProduct.Name = "Renamed Beans"
	require.NoError(t, st.UpsertProducts(ctx, []models.Product{driftedProduct}))

	driftedCustomer := customer
	driftedCustomer.Name = "Renamed Customer"
	require.NoError(t, st.UpsertCustomers(ctx, []models.Customer{driftedCustomer}))

	restore, err := svc.Restore(ctx, RestoreInput{
		TenantID:  tenant.ID,
		BackupID:  backup.ID,
		Type:      models.RestoreSelective,
		DataTypes: []string{CategoryProducts},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RestoreCompleted, restore.Status)
	assert.Equal(t, models.StringList{CategoryProducts}, restore.DataTypes)

	products, err := st.ListProducts(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Espresso Beans", products[0].Name, "selected category is reverted")

	customers, err := st.ListCustomers(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Renamed Customer", customers[0].Name, "unselected category is untouched")
}

func TestRestoreFailureKeepsAppliedCategories(t *testing.T) {
	memory := store.NewMemory()
	st := &failingUpsertStore{Memory: memory}
	blobs := storage.NewMemoryBlob()
	rec := &events.Recorder{}
	svc := NewService(st, blobs, rec)
	ctx := context.Background()
	tenant, product, _ := seedDataset(t, memory)
	backup := completedBackup(t, svc, tenant.ID)

	drifted := product
	drifted.Name = "Renamed Beans"
	require.NoError(t, memory.UpsertProducts(ctx, []models.Product{drifted}))

	st.failCustomers = true
	restore, err := svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDependency))
	require.NotNil(t, restore)
	assert.Equal(t, models.RestoreFailed, restore.Status)
	assert.Contains(t, restore.ErrorMessage, CategoryCustomers)

	products, listErr := memory.ListProducts(ctx, tenant.ID)
	require.NoError(t, listErr)
	require.Len(t, products, 1)
	assert.Equal(t, "Espresso Beans", products[0].Name, "categories applied before the failure are kept")

	assert.Empty(t, rec.ByType(events.TypeDataRestored))

	// The same restore rerun after the fault clears converges
	st.failCustomers = false
	again, err := svc.Restore(ctx, RestoreInput{TenantID: tenant.ID, BackupID: backup.ID, Type: models.RestoreFull})
	require.NoError(t, err)
	assert.Equal(t, models.RestoreCompleted, again.Status)
}
