package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes the two fee kinds a tenant is charged
type PaymentType string

const (
	// PaymentUpfront is the one-time activation fee
	PaymentUpfront PaymentType = "upfront"
	// PaymentMaintenance is the recurring 6-month fee driving the renewal date
	PaymentMaintenance PaymentType = "maintenance"
)

// Payment is one ledger entry against a tenant. Append-only: rows are
// never mutated or deleted in normal flow.
type Payment struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  uuid.UUID       `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Type      PaymentType     `json:"payment_type" gorm:"type:varchar(20);not null"`
	Method    string          `json:"method" gorm:"type:varchar(50)"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (Payment) TableName() string {
	return "payments"
}

// RenewalInterval is how far a maintenance payment pushes the renewal date
const RenewalIntervalMonths = 6

// RenewalAfter returns the renewal date implied by a maintenance payment
// recorded at the given time.
func RenewalAfter(paidAt time.Time) time.Time {
	return paidAt.AddDate(0, RenewalIntervalMonths, 0)
}
