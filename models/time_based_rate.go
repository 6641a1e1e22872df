package models

import (
	"time"
)

// TimeBasedRate applies a multiplier during a [StartTime, EndTime) window on
// one weekday. Windows never wrap past midnight; StartTime < EndTime.
type TimeBasedRate struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	PricingConfigID uint   `gorm:"not null;index:idx_time_based_rates_config_id" json:"pricing_config_id"`
	Name            string `gorm:"size:255;not null" json:"name"`
	// DayOfWeek follows time.Weekday numbering: 0=Sunday .. 6=Saturday
	DayOfWeek int `gorm:"not null" json:"day_of_week"`
	// StartTime and EndTime are local times of day in "HH:MM"
	StartTime  string  `gorm:"size:5;not null" json:"start_time"`
	EndTime    string  `gorm:"size:5;not null" json:"end_time"`
	Multiplier float64 `gorm:"type:numeric(5,2);not null" json:"multiplier"`
	// Position preserves list order for deterministic tie-breaking between
	// overlapping windows
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (TimeBasedRate) TableName() string {
	return "time_based_rates"
}

// WindowMinutes returns start and end as minutes since midnight. Malformed
// bounds are rejected at validation time; this assumes well-formed values.
func (t *TimeBasedRate) WindowMinutes() (int, int) {
	return hhmmToMinutes(t.StartTime), hhmmToMinutes(t.EndTime)
}

// Contains reports whether the given time's weekday and local time of day
// fall inside the window. Start is inclusive, end exclusive.
func (t *TimeBasedRate) Contains(at time.Time) bool {
	if int(at.Weekday()) != t.DayOfWeek {
		return false
	}
	minute := at.Hour()*60 + at.Minute()
	start, end := t.WindowMinutes()
	return minute >= start && minute < end
}

// WindowWidth returns the window length in minutes.
func (t *TimeBasedRate) WindowWidth() int {
	start, end := t.WindowMinutes()
	return end - start
}

func hhmmToMinutes(s string) int {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0
	}
	return parsed.Hour()*60 + parsed.Minute()
}
