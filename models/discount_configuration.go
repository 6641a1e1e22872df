package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount type constants
const (
	DiscountTypeSenior = "senior"
	DiscountTypePWD    = "pwd"
	DiscountTypeCustom = "custom"
)

// IsValidDiscountType reports whether t is a known discount type.
func IsValidDiscountType(t string) bool {
	return t == DiscountTypeSenior || t == DiscountTypePWD || t == DiscountTypeCustom
}

// DiscountConditions is the structured predicate stored in the Conditions
// column. All fields are optional; absent fields do not constrain.
type DiscountConditions struct {
	// MinAmount is the minimum pre-discount subtotal for the discount to apply
	MinAmount *float64 `json:"min_amount,omitempty"`
	// MaxUsage caps how many times the discount may be used in total
	MaxUsage *int `json:"max_usage,omitempty"`
}

// DiscountConfiguration is an operator-owned discount applied after rate
// computation. Independent of the pricing hierarchy.
type DiscountConfiguration struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_discount_configurations_uuid" json:"uuid"`
	OperatorID uint      `gorm:"not null;index:idx_discount_configurations_operator_id" json:"operator_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	// Type is one of senior, pwd, custom
	Type string `gorm:"size:20;not null" json:"type"`
	// Percentage is the discount in percent, between 0 and 100
	Percentage float64 `gorm:"type:numeric(5,2);not null" json:"percentage"`
	// IsVATExempt zeroes the VAT component of any transaction it applies to
	IsVATExempt *bool           `gorm:"not null;default:false" json:"is_vat_exempt"`
	Conditions  json.RawMessage `gorm:"type:jsonb" json:"conditions,omitempty"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	UsageCount  int             `gorm:"not null;default:0" json:"usage_count"`
	CreatedBy   *string         `gorm:"size:255" json:"created_by,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (DiscountConfiguration) TableName() string {
	return "discount_configurations"
}

// BeforeCreate ensures UUID is set for DiscountConfiguration
func (d *DiscountConfiguration) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}

// ParseConditions decodes the Conditions column; an empty column yields a
// zero-value predicate that never constrains.
func (d *DiscountConfiguration) ParseConditions() (DiscountConditions, error) {
	var c DiscountConditions
	if len(d.Conditions) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(d.Conditions, &c); err != nil {
		return DiscountConditions{}, err
	}
	return c, nil
}

// DiscountConfigurationFilter represents filter criteria for discount queries
type DiscountConfigurationFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	OperatorID *uint      `json:"operator_id,omitempty"`
	Type       *string    `json:"type,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
}
