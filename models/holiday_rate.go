package models

import (
	"time"

	"github.com/parqhive/pricing-service/utils"
)

// HolidayRate applies a multiplier on a calendar date. Recurring rates match
// month and day every year; exact-date rates take precedence over recurring
// ones when both match.
type HolidayRate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PricingConfigID uint      `gorm:"not null;index:idx_holiday_rates_config_id" json:"pricing_config_id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Date            time.Time `gorm:"type:date;not null" json:"date"`
	IsRecurring     bool      `gorm:"not null;default:false" json:"is_recurring"`
	Multiplier      float64   `gorm:"type:numeric(5,2);not null" json:"multiplier"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	CreatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (HolidayRate) TableName() string {
	return "holiday_rates"
}

// Matches reports whether the rate applies on the given time's calendar date.
func (h *HolidayRate) Matches(at time.Time) bool {
	if h.IsRecurring {
		return utils.SameMonthDay(h.Date, at)
	}
	return utils.SameCalendarDate(h.Date, at)
}
