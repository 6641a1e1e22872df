package dto

// VehicleTypeRateInput is one vehicle-type override inside a pricing config payload.
type VehicleTypeRateInput struct {
	VehicleType string  `json:"vehicle_type" validate:"required,max=50"`
	Rate        float64 `json:"rate" validate:"gte=0"`
}

// TimeBasedRateInput is one time-of-day window inside a pricing config payload.
// Start and end are local times of day in "HH:MM"; windows never wrap past midnight.
type TimeBasedRateInput struct {
	Name       string  `json:"name" validate:"required,max=255"`
	DayOfWeek  int     `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime  string  `json:"start_time" validate:"required,len=5"`
	EndTime    string  `json:"end_time" validate:"required,len=5"`
	Multiplier float64 `json:"multiplier" validate:"gte=0.1,lte=5"`
}

// HolidayRateInput is one holiday rule inside a pricing config payload.
// Date is "YYYY-MM-DD"; recurring rules match month and day every year.
type HolidayRateInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Date        string  `json:"date" validate:"required,len=10"`
	IsRecurring bool    `json:"is_recurring"`
	Multiplier  float64 `json:"multiplier" validate:"gte=0.1,lte=5"`
}

// PricingConfigInput is the payload for createOrUpdate. It replaces a node's
// owned config wholesale; partial merges are not supported.
type PricingConfigInput struct {
	BaseRate            float64                `json:"base_rate" validate:"gte=0"`
	VATRate             float64                `json:"vat_rate" validate:"gte=0,lte=100"`
	OccupancyMultiplier float64                `json:"occupancy_multiplier" validate:"gte=0.1,lte=5"`
	VehicleTypeRates    []VehicleTypeRateInput `json:"vehicle_type_rates,omitempty" validate:"omitempty,dive"`
	TimeBasedRates      []TimeBasedRateInput   `json:"time_based_rates,omitempty" validate:"omitempty,dive"`
	HolidayRates        []HolidayRateInput     `json:"holiday_rates,omitempty" validate:"omitempty,dive"`
}

// VehicleTypeRateDTO mirrors one stored vehicle-type override.
type VehicleTypeRateDTO struct {
	VehicleType string  `json:"vehicle_type"`
	Rate        float64 `json:"rate"`
}

// TimeBasedRateDTO mirrors one stored time-of-day window.
type TimeBasedRateDTO struct {
	Name       string  `json:"name"`
	DayOfWeek  int     `json:"day_of_week"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Multiplier float64 `json:"multiplier"`
}

// HolidayRateDTO mirrors one stored holiday rule.
type HolidayRateDTO struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	IsRecurring bool    `json:"is_recurring"`
	Multiplier  float64 `json:"multiplier"`
}

// PricingConfigDTO is the response shape of a pricing configuration.
type PricingConfigDTO struct {
	UUID                string               `json:"uuid,omitempty"`
	BaseRate            float64              `json:"base_rate"`
	VATRate             float64              `json:"vat_rate"`
	OccupancyMultiplier float64              `json:"occupancy_multiplier"`
	VehicleTypeRates    []VehicleTypeRateDTO `json:"vehicle_type_rates,omitempty"`
	TimeBasedRates      []TimeBasedRateDTO   `json:"time_based_rates,omitempty"`
	HolidayRates        []HolidayRateDTO     `json:"holiday_rates,omitempty"`
	CreatedAt           string               `json:"created_at,omitempty"`
	UpdatedAt           string               `json:"updated_at,omitempty"`
}

// PricingInheritanceResultDTO reports which config governs a node and where
// it came from.
type PricingInheritanceResultDTO struct {
	NodeUUID          string            `json:"node_uuid"`
	Level             string            `json:"level"`
	Name              string            `json:"name"`
	Source            string            `json:"source"`
	EffectivePricing  *PricingConfigDTO `json:"effective_pricing"`
	OwnPricing        *PricingConfigDTO `json:"own_pricing,omitempty"`
	InheritedPricing  *PricingConfigDTO `json:"inherited_pricing,omitempty"`
	InheritedFromUUID string            `json:"inherited_from_uuid,omitempty"`
	InheritedFromName string            `json:"inherited_from_name,omitempty"`
}

// ResolvePricingResponse wraps one inheritance resolution.
type ResolvePricingResponse struct {
	Message string                      `json:"message"`
	Result  PricingInheritanceResultDTO `json:"result"`
}

// HierarchyNodeDTO is one node of a hierarchy snapshot, annotated with its
// effective pricing source.
type HierarchyNodeDTO struct {
	UUID          string              `json:"uuid"`
	Level         string              `json:"level"`
	Name          string              `json:"name"`
	PricingSource string              `json:"pricing_source"`
	OwnPricing    *PricingConfigDTO   `json:"own_pricing,omitempty"`
	Children      []*HierarchyNodeDTO `json:"children,omitempty"`
}

// GetPricingHierarchyResponse returns the full tree rooted at a location.
// Cached reports whether the snapshot was served from the cache.
type GetPricingHierarchyResponse struct {
	Message string           `json:"message"`
	Cached  bool             `json:"cached"`
	Root    HierarchyNodeDTO `json:"root"`
}

// CreateOrUpdatePricingResponse reports the stored config after a write.
type CreateOrUpdatePricingResponse struct {
	Message string           `json:"message"`
	Config  PricingConfigDTO `json:"config"`
}

// RemovePricingResponse reports whether an owned config was removed.
type RemovePricingResponse struct {
	Message string `json:"message"`
	Removed bool   `json:"removed"`
}

// CopyToChildrenRequest controls cascade behavior for copy-to-children.
type CopyToChildrenRequest struct {
	Recursive bool `json:"recursive"`
}

// CopyToChildrenResponse reports how many children received a copy.
type CopyToChildrenResponse struct {
	Message     string `json:"message"`
	CopiedCount int    `json:"copied_count"`
}

// QuoteRequest is the booking context for a price quote.
type QuoteRequest struct {
	VehicleType    string   `json:"vehicle_type" validate:"omitempty,max=50"`
	Timestamp      string   `json:"timestamp" validate:"required"`
	OccupancyRatio float64  `json:"occupancy_ratio" validate:"gte=0,lte=1"`
	DiscountIDs    []string `json:"discount_ids,omitempty" validate:"omitempty,dive,uuid"`
}

// AppliedMultiplierDTO is one entry of the ordered rule audit trail.
type AppliedMultiplierDTO struct {
	RuleName   string  `json:"rule_name"`
	Multiplier float64 `json:"multiplier"`
}

// PricedResultDTO is the full quote breakdown shown by the dashboards.
type PricedResultDTO struct {
	BaseRate           float64                `json:"base_rate"`
	AppliedMultipliers []AppliedMultiplierDTO `json:"applied_multipliers"`
	Subtotal           float64                `json:"subtotal"`
	DiscountAmount     float64                `json:"discount_amount"`
	VATAmount          float64                `json:"vat_amount"`
	TotalAmount        float64                `json:"total_amount"`
	VATExempt          bool                   `json:"vat_exempt"`
	Currency           string                 `json:"currency"`
	PricingSource      string                 `json:"pricing_source"`
	AppliedDiscounts   []string               `json:"applied_discounts,omitempty"`
}

// QuoteResponse wraps one computed quote.
type QuoteResponse struct {
	Message string          `json:"message"`
	Quote   PricedResultDTO `json:"quote"`
}
