package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan is the commercial tier of a tenant
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// TenantStatus is the lifecycle status of a tenant
type TenantStatus string

const (
	TenantPending  TenantStatus = "pending"
	TenantActive   TenantStatus = "active"
	TenantInactive TenantStatus = "inactive"
)

// PaymentStatus is the tenant's current billing standing
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// Tenant represents one subscribing business on the platform.
// Created only by signup approval, never hard-deleted in normal
// operation (soft lifecycle via Status).
type Tenant struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string       `json:"name" gorm:"not null"`
	Email        string       `json:"email" gorm:"not null;index"`
	BusinessType string       `json:"business_type"`
	Plan         Plan         `json:"plan" gorm:"type:varchar(20);not null"`
	Status       TenantStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`

	PaymentStatus      PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending'"`
	Features           FeatureSet      `json:"features" gorm:"type:jsonb;not null;default:'[]'"`
	UpfrontFee         decimal.Decimal `json:"upfront_fee" gorm:"type:numeric(12,2)"`
	MaintenanceFee     decimal.Decimal `json:"maintenance_fee" gorm:"type:numeric(12,2)"`
	UpfrontFeePaid     bool            `json:"upfront_fee_paid" gorm:"default:false"`
	MaintenanceFeePaid bool            `json:"maintenance_fee_paid" gorm:"default:false"`
	LastPaymentDate    *time.Time      `json:"last_payment_date,omitempty"`
	NextPaymentDate    *time.Time      `json:"next_payment_date,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Users []User `json:"users,omitempty" gorm:"foreignKey:TenantID"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// IsActive reports whether the tenant is currently active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantActive
}

// DaysUntilRenewal returns the whole days remaining until the renewal
// date, negative when the date has passed. ok is false when no renewal
// date is set.
func (t *Tenant) DaysUntilRenewal(now time.Time) (days int, ok bool) {
	if t.NextPaymentDate == nil {
		return 0, false
	}
	return int(t.NextPaymentDate.Sub(now).Hours() / 24), true
}

// IsDueSoon reports whether the renewal date falls within the next 30 days
func (t *Tenant) IsDueSoon(now time.Time) bool {
	days, ok := t.DaysUntilRenewal(now)
	return ok && days >= 0 && days <= 30
}
