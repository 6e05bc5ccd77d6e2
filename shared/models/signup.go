package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SignupStatus is the state of a signup request
type SignupStatus string

const (
	SignupPending  SignupStatus = "pending"
	SignupApproved SignupStatus = "approved"
	SignupRejected SignupStatus = "rejected"
)

// BusinessConfig is the business profile submitted with a signup request.
// Free-form attributes the applicant fills in; only BusinessName is
// required for submission.
type BusinessConfig struct {
	BusinessName   string `json:"business_name"`
	BusinessType   string `json:"business_type,omitempty"`
	Address        string `json:"address,omitempty"`
	OwnerName      string `json:"owner_name,omitempty"`
	OwnerPhone     string `json:"owner_phone,omitempty"`
	RegistrationNo string `json:"registration_no,omitempty"`
	EmployeeCount  int    `json:"employee_count,omitempty"`
	LocationCount  int    `json:"location_count,omitempty"`
}

// Value implements driver.Valuer for jsonb persistence
func (bc BusinessConfig) Value() (driver.Value, error) {
	return json.Marshal(bc)
}

// Scan implements sql.Scanner for jsonb persistence
func (bc *BusinessConfig) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, bc)
	case string:
		return json.Unmarshal([]byte(v), bc)
	case nil:
		*bc = BusinessConfig{}
		return nil
	default:
		return fmt.Errorf("unsupported business config column type %T", value)
	}
}

// SignupRequest is a prospective tenant's application. It transitions
// exactly once from pending to approved or rejected; approval is the sole
// creator of a Tenant record.
type SignupRequest struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email string    `json:"email" gorm:"not null;index"`
	// CredentialSecret is held only until the request reaches a terminal
	// state; approval consumes it for credential provisioning and both
	// terminal transitions clear it.
	CredentialSecret string         `json:"-" gorm:"type:varchar(255)"`
	Config           BusinessConfig `json:"config" gorm:"type:jsonb;not null;default:'{}'"`
	Status           SignupStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`

	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	TenantID        *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SignupRequest) TableName() string {
	return "signup_requests"
}

// IsTerminal reports whether the request has already been decided
func (r *SignupRequest) IsTerminal() bool {
	return r.Status == SignupApproved || r.Status == SignupRejected
}
