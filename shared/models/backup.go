package models

import (
	"time"

	"github.com/google/uuid"
)

// BackupType selects how much of a tenant's dataset a backup covers
type BackupType string

const (
	BackupFull      BackupType = "full"
	BackupSelective BackupType = "selective"
)

// BackupStatus is the lifecycle of a backup record
type BackupStatus string

const (
	BackupPending   BackupStatus = "pending"
	BackupCompleted BackupStatus = "completed"
	BackupFailed    BackupStatus = "failed"
)

// Backup records one snapshot attempt for a tenant. Created pending,
// transitions exactly once to completed (with storage key and size) or
// failed (with error message), immutable thereafter.
type Backup struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     uuid.UUID    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Type         BackupType   `json:"backup_type" gorm:"type:varchar(20);not null"`
	Status       BackupStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	StorageKey   string       `json:"storage_key,omitempty"`
	SizeBytes    int64        `json:"size_bytes,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Backup) TableName() string {
	return "backups"
}

// RestoreStatus is the lifecycle of a restore request
type RestoreStatus string

const (
	RestoreProcessing RestoreStatus = "processing"
	RestoreCompleted  RestoreStatus = "completed"
	RestoreFailed     RestoreStatus = "failed"
)

// RestoreType selects whether a restore replays the whole snapshot or a
// subset of data categories
type RestoreType string

const (
	RestoreFull      RestoreType = "full"
	RestoreSelective RestoreType = "selective"
)

// RestoreRequest tracks one replay of a backup into the live store.
// Terminal either way; retries allocate a fresh request and rely on
// upsert idempotency.
type RestoreRequest struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	BackupID     uuid.UUID     `json:"backup_id" gorm:"type:uuid;not null"`
	Type         RestoreType   `json:"restore_type" gorm:"type:varchar(20);not null"`
	DataTypes    StringList    `json:"data_types,omitempty" gorm:"type:jsonb;default:'[]'"`
	Status       RestoreStatus `json:"status" gorm:"type:varchar(20);not null;default:'processing'"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (RestoreRequest) TableName() string {
	return "restore_requests"
}
