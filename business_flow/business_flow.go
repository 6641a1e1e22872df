// Package businessflow contains the business logic for the pricing service.
package businessflow

import (
	"time"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/utils"
)

const RequestIDKey = "X-Request-ID"

// DateLayout is the wire format for holiday dates.
const DateLayout = "2006-01-02"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// PricingInheritanceResult is the read model produced by inheritance
// resolution. Recomputed per query, never persisted.
type PricingInheritanceResult struct {
	Node             *models.HierarchyNode
	Source           string
	EffectivePricing *models.PricingConfig
	OwnPricing       *models.PricingConfig
	InheritedPricing *models.PricingConfig
	InheritedFrom    *models.HierarchyNode
}

// DefaultPricingConfig builds the system-wide fallback configuration used
// when no node in an ancestor chain owns one: fixed base rate, fixed VAT,
// multiplier 1.0, no vehicle/time/holiday rules.
func DefaultPricingConfig(baseRate, vatRate float64) *models.PricingConfig {
	return &models.PricingConfig{
		BaseRate:            baseRate,
		VATRate:             vatRate,
		OccupancyMultiplier: 1.0,
	}
}

// ToPricingConfigDTO converts a pricing config model to its response shape.
func ToPricingConfigDTO(config *models.PricingConfig) *dto.PricingConfigDTO {
	if config == nil {
		return nil
	}
	out := &dto.PricingConfigDTO{
		BaseRate:            config.BaseRate,
		VATRate:             config.VATRate,
		OccupancyMultiplier: config.OccupancyMultiplier,
	}
	if config.ID != 0 {
		out.UUID = config.UUID.String()
		out.CreatedAt = config.CreatedAt.Format(time.RFC3339)
		out.UpdatedAt = config.UpdatedAt.Format(time.RFC3339)
	}
	for _, vr := range config.VehicleTypeRates {
		out.VehicleTypeRates = append(out.VehicleTypeRates, dto.VehicleTypeRateDTO{
			VehicleType: vr.VehicleType,
			Rate:        vr.Rate,
		})
	}
	for _, tr := range config.TimeBasedRates {
		out.TimeBasedRates = append(out.TimeBasedRates, dto.TimeBasedRateDTO{
			Name:       tr.Name,
			DayOfWeek:  tr.DayOfWeek,
			StartTime:  tr.StartTime,
			EndTime:    tr.EndTime,
			Multiplier: tr.Multiplier,
		})
	}
	for _, hr := range config.HolidayRates {
		out.HolidayRates = append(out.HolidayRates, dto.HolidayRateDTO{
			Name:        hr.Name,
			Date:        hr.Date.Format(DateLayout),
			IsRecurring: hr.IsRecurring,
			Multiplier:  hr.Multiplier,
		})
	}
	return out
}

// ToInheritanceResultDTO converts a resolution read model to its response shape.
func ToInheritanceResultDTO(result *PricingInheritanceResult) dto.PricingInheritanceResultDTO {
	out := dto.PricingInheritanceResultDTO{
		NodeUUID:         result.Node.UUID.String(),
		Level:            result.Node.Level,
		Name:             result.Node.Name,
		Source:           result.Source,
		EffectivePricing: ToPricingConfigDTO(result.EffectivePricing),
		OwnPricing:       ToPricingConfigDTO(result.OwnPricing),
		InheritedPricing: ToPricingConfigDTO(result.InheritedPricing),
	}
	if result.InheritedFrom != nil {
		out.InheritedFromUUID = result.InheritedFrom.UUID.String()
		out.InheritedFromName = result.InheritedFrom.Name
	}
	return out
}

// ToPricedResultDTO converts a calculation outcome to the quote breakdown
// shape, carrying the inheritance source along for display.
func ToPricedResultDTO(result *PricedResult, source string) dto.PricedResultDTO {
	out := dto.PricedResultDTO{
		BaseRate:         result.BaseRate.InexactFloat64(),
		Subtotal:         result.Subtotal.InexactFloat64(),
		DiscountAmount:   result.DiscountAmount.InexactFloat64(),
		VATAmount:        result.VATAmount.InexactFloat64(),
		TotalAmount:      result.TotalAmount.InexactFloat64(),
		VATExempt:        result.VATExempt,
		Currency:         utils.PHPCurrency,
		PricingSource:    source,
		AppliedDiscounts: result.AppliedDiscounts,
	}
	for _, am := range result.AppliedMultipliers {
		out.AppliedMultipliers = append(out.AppliedMultipliers, dto.AppliedMultiplierDTO{
			RuleName:   am.RuleName,
			Multiplier: am.Multiplier.InexactFloat64(),
		})
	}
	return out
}

// ToDiscountDTO converts a discount configuration model to its response shape.
func ToDiscountDTO(d *models.DiscountConfiguration) dto.DiscountConfigurationDTO {
	out := dto.DiscountConfigurationDTO{
		UUID:        d.UUID.String(),
		OperatorID:  d.OperatorID,
		Name:        d.Name,
		Type:        d.Type,
		Percentage:  d.Percentage,
		IsVATExempt: utils.IsTrue(d.IsVATExempt),
		IsActive:    utils.IsTrue(d.IsActive),
		UsageCount:  d.UsageCount,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.CreatedBy != nil {
		out.CreatedBy = *d.CreatedBy
	}
	if conditions, err := d.ParseConditions(); err == nil {
		if conditions.MinAmount != nil || conditions.MaxUsage != nil {
			out.Conditions = &dto.DiscountConditionsDTO{
				MinAmount: conditions.MinAmount,
				MaxUsage:  conditions.MaxUsage,
			}
		}
	}
	return out
}
