package models

import "time"

// Vehicle type constants used by the dashboards; custom types are allowed.
const (
	VehicleTypeCar        = "car"
	VehicleTypeMotorcycle = "motorcycle"
	VehicleTypeTruck      = "truck"
	VehicleTypeVan        = "van"
)

// VehicleTypeRate overrides the base rate for one vehicle type within a
// pricing config. VehicleType is unique per config.
type VehicleTypeRate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PricingConfigID uint      `gorm:"not null;uniqueIndex:uk_vehicle_type_rates_config_type" json:"pricing_config_id"`
	VehicleType     string    `gorm:"size:50;not null;uniqueIndex:uk_vehicle_type_rates_config_type" json:"vehicle_type"`
	Rate            float64   `gorm:"type:numeric(12,4);not null" json:"rate"`
	CreatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (VehicleTypeRate) TableName() string {
	return "vehicle_type_rates"
}
