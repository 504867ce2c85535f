package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Marketplace roles stored on vendor accounts.
const (
	RoleSeller        = "seller"
	RoleVendor        = "vendor"
	RoleAdministrator = "administrator"
)

// ChargesEnabledYes is the literal value mirrored from Stripe when the
// connected account can take payments. Anything else means not enabled.
const ChargesEnabledYes = "yes"

// StringList represents a list of strings that can be stored as JSONB
type StringList []string

func (s *StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = make([]string, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// VendorAccount represents a marketplace user account together with the
// Stripe onboarding metadata mirrored from the payment provider.
type VendorAccount struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string     `gorm:"uniqueIndex;size:60;not null" json:"username" binding:"required"`
	DisplayName     string     `gorm:"size:120" json:"display_name"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email" binding:"required,email"`
	Role            string     `gorm:"size:30;not null;index" json:"role"`
	StripeAccountID string     `gorm:"size:255" json:"stripe_account_id"`
	ChargesEnabled  string     `gorm:"size:10" json:"charges_enabled"` // "yes" when Stripe can charge
	ShippingZones   StringList `gorm:"type:jsonb" json:"shipping_zones"`
	CachedStatus    string     `gorm:"size:30" json:"cached_status"`

	// Send Record: when the vendor last received a reminder and what the
	// classified status was at that moment.
	LastReminderSentAt *time.Time `gorm:"index" json:"last_reminder_sent_at"`
	LastReminderStatus string     `gorm:"size:30" json:"last_reminder_status"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the VendorAccount model
func (VendorAccount) TableName() string {
	return "vendor_account"
}

// BeforeCreate hook is called before creating a new vendor account
func (v *VendorAccount) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = now
	}
	if v.DisplayName == "" {
		v.DisplayName = v.Username
	}
	return nil
}

// BeforeSave hook is called before saving the vendor account
func (v *VendorAccount) BeforeSave(tx *gorm.DB) error {
	v.UpdatedAt = time.Now()
	return nil
}

// HasStripeAccount reports whether a connected Stripe account ID is recorded.
func (v *VendorAccount) HasStripeAccount() bool {
	return v.StripeAccountID != ""
}

// PaymentsEnabled reports whether the mirrored Stripe metadata says the
// account can take charges.
func (v *VendorAccount) PaymentsEnabled() bool {
	return v.ChargesEnabled == ChargesEnabledYes
}

// HasShippingZones reports whether at least one shipping zone is configured.
func (v *VendorAccount) HasShippingZones() bool {
	return len(v.ShippingZones) > 0
}

// RecipientName returns the name used when addressing reminder emails.
func (v *VendorAccount) RecipientName() string {
	if v.DisplayName != "" {
		return v.DisplayName
	}
	return v.Username
}
