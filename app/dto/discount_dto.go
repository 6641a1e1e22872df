package dto

// DiscountConditionsDTO is the structured predicate attached to a discount.
type DiscountConditionsDTO struct {
	MinAmount *float64 `json:"min_amount,omitempty" validate:"omitempty,gte=0"`
	MaxUsage  *int     `json:"max_usage,omitempty" validate:"omitempty,gte=1"`
}

// CreateDiscountRequest creates a new discount configuration for the
// authenticated operator.
type CreateDiscountRequest struct {
	Name        string                 `json:"name" validate:"required,max=255"`
	Type        string                 `json:"type" validate:"required,oneof=senior pwd custom"`
	Percentage  float64                `json:"percentage" validate:"gte=0,lte=100"`
	IsVATExempt bool                   `json:"is_vat_exempt"`
	Conditions  *DiscountConditionsDTO `json:"conditions,omitempty"`
	IsActive    *bool                  `json:"is_active,omitempty"`
}

// UpdateDiscountRequest partially updates a discount configuration. At least
// one field must be present.
type UpdateDiscountRequest struct {
	Name        *string                `json:"name,omitempty" validate:"omitempty,max=255"`
	Percentage  *float64               `json:"percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsVATExempt *bool                  `json:"is_vat_exempt,omitempty"`
	Conditions  *DiscountConditionsDTO `json:"conditions,omitempty"`
	IsActive    *bool                  `json:"is_active,omitempty"`
}

// DiscountConfigurationDTO is the response shape of a discount configuration.
type DiscountConfigurationDTO struct {
	UUID        string                 `json:"uuid"`
	OperatorID  uint                   `json:"operator_id"`
	Name        string                 `json:"name"`
	Type        string                 `json:"type"`
	Percentage  float64                `json:"percentage"`
	IsVATExempt bool                   `json:"is_vat_exempt"`
	Conditions  *DiscountConditionsDTO `json:"conditions,omitempty"`
	IsActive    bool                   `json:"is_active"`
	UsageCount  int                    `json:"usage_count"`
	CreatedBy   string                 `json:"created_by,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

// CreateDiscountResponse wraps a newly created discount.
type CreateDiscountResponse struct {
	Message  string                   `json:"message"`
	Discount DiscountConfigurationDTO `json:"discount"`
}

// UpdateDiscountResponse wraps an updated discount.
type UpdateDiscountResponse struct {
	Message  string                   `json:"message"`
	Discount DiscountConfigurationDTO `json:"discount"`
}

// ListDiscountsResponse lists an operator's discount configurations.
type ListDiscountsResponse struct {
	Message string                     `json:"message"`
	Items   []DiscountConfigurationDTO `json:"items"`
}

// DeleteDiscountResponse confirms a deletion.
type DeleteDiscountResponse struct {
	Message string `json:"message"`
}
