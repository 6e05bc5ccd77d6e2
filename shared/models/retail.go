package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The retail records below are the tenant dataset the backup engine
// snapshots and the restore engine replays. Each carries a stable uuid
// primary key so restores can upsert by id.

// Product is one sellable item in a tenant's inventory
type Product struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	SKU       string          `json:"sku"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Customer is one customer in a tenant's directory
type Customer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Worker is one staff member employed by a tenant
type Worker struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	Email     string          `json:"email"`
	Position  string          `json:"position"`
	Salary    decimal.Decimal `json:"salary" gorm:"type:numeric(12,2)"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Worker) TableName() string {
	return "workers"
}

// Sale is one recorded point-of-sale order
type Sale struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID       `json:"tenant_id" gorm:"type:uuid;not null;index"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty" gorm:"type:uuid"`
	WorkerID   *uuid.UUID      `json:"worker_id,omitempty" gorm:"type:uuid"`
	Total      decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	ItemCount  int             `json:"item_count"`
	CreatedAt  time.Time       `json:"created_at" gorm:"index"`
}

func (Sale) TableName() string {
	return "sales"
}

// StringList is a jsonb-persisted list of strings
type StringList []string

// Value implements driver.Valuer
func (sl StringList) Value() (driver.Value, error) {
	if sl == nil {
		sl = StringList{}
	}
	return json.Marshal(sl)
}

// Scan implements sql.Scanner
func (sl *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, sl)
	case string:
		return json.Unmarshal([]byte(v), sl)
	case nil:
		*sl = StringList{}
		return nil
	default:
		return fmt.Errorf("unsupported string list column type %T", value)
	}
}
