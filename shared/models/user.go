package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a provisioned login for a tenant. Authentication itself
// lives in the identity provider; this row only keeps the linkage between
// the provider subject and the tenant.
type User struct {
	SubjectID string    `json:"subject_id" gorm:"type:varchar(255);primaryKey"`
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`
	Email     string    `json:"email" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"type:varchar(20);default:'staff'"`
	CreatedAt time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

type UserRole string

const (
	// RoleOperator is the platform control-plane role
	RoleOperator UserRole = "operator"
	// RoleOwner is the owner of one tenant business
	RoleOwner UserRole = "owner"
	// RoleStaff is a regular worker login within a tenant
	RoleStaff UserRole = "staff"
)

func (User) TableName() string {
	return "users"
}
