package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pricing sources reported by inheritance resolution.
const (
	PricingSourceOwn       = "own"
	PricingSourceInherited = "inherited"
	PricingSourceDefault   = "default"
)

// PricingConfig is the bundle of rate rules owned by exactly one hierarchy
// node. A node without one inherits the nearest ancestor's config, or the
// system default when no ancestor owns one.
type PricingConfig struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_pricing_configs_uuid" json:"uuid"`
	NodeID uint      `gorm:"not null;uniqueIndex:uk_pricing_configs_node_id" json:"node_id"`

	// BaseRate is the hourly rate in PHP; must be >= 0
	BaseRate float64 `gorm:"type:numeric(12,4);not null" json:"base_rate"`
	// VATRate is a percentage between 0 and 100
	VATRate float64 `gorm:"type:numeric(5,2);not null" json:"vat_rate"`
	// OccupancyMultiplier is a static factor between 0.1 and 5.0 applied on
	// top of the dynamic occupancy band
	OccupancyMultiplier float64 `gorm:"type:numeric(5,2);not null;default:1.0" json:"occupancy_multiplier"`

	VehicleTypeRates []VehicleTypeRate `gorm:"foreignKey:PricingConfigID;constraint:OnDelete:CASCADE" json:"vehicle_type_rates,omitempty"`
	TimeBasedRates   []TimeBasedRate   `gorm:"foreignKey:PricingConfigID;constraint:OnDelete:CASCADE" json:"time_based_rates,omitempty"`
	HolidayRates     []HolidayRate     `gorm:"foreignKey:PricingConfigID;constraint:OnDelete:CASCADE" json:"holiday_rates,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (PricingConfig) TableName() string {
	return "pricing_configs"
}

// BeforeCreate ensures UUID is set for PricingConfig
func (p *PricingConfig) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

// VehicleRate returns the rate for a vehicle type and whether one is configured.
func (p *PricingConfig) VehicleRate(vehicleType string) (float64, bool) {
	for _, vr := range p.VehicleTypeRates {
		if vr.VehicleType == vehicleType {
			return vr.Rate, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the config with identity fields cleared so it
// can be saved as a new owned config on another node.
func (p *PricingConfig) Clone() *PricingConfig {
	c := &PricingConfig{
		BaseRate:            p.BaseRate,
		VATRate:             p.VATRate,
		OccupancyMultiplier: p.OccupancyMultiplier,
	}
	for _, vr := range p.VehicleTypeRates {
		c.VehicleTypeRates = append(c.VehicleTypeRates, VehicleTypeRate{
			VehicleType: vr.VehicleType,
			Rate:        vr.Rate,
		})
	}
	for _, tr := range p.TimeBasedRates {
		c.TimeBasedRates = append(c.TimeBasedRates, TimeBasedRate{
			Name:       tr.Name,
			DayOfWeek:  tr.DayOfWeek,
			StartTime:  tr.StartTime,
			EndTime:    tr.EndTime,
			Multiplier: tr.Multiplier,
			Position:   tr.Position,
		})
	}
	for _, hr := range p.HolidayRates {
		c.HolidayRates = append(c.HolidayRates, HolidayRate{
			Name:        hr.Name,
			Date:        hr.Date,
			IsRecurring: hr.IsRecurring,
			Multiplier:  hr.Multiplier,
			Position:    hr.Position,
		})
	}
	return c
}

// PricingConfigFilter represents filter criteria for pricing config queries
type PricingConfigFilter struct {
	ID     *uint      `json:"id,omitempty"`
	UUID   *uuid.UUID `json:"uuid,omitempty"`
	NodeID *uint      `json:"node_id,omitempty"`
}
