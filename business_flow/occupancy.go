package businessflow

import (
	"github.com/shopspring/decimal"
)

// Occupancy band names surfaced in quote breakdowns.
const (
	OccupancyBandPeak     = "occupancy_peak"
	OccupancyBandHigh     = "occupancy_high"
	OccupancyBandElevated = "occupancy_elevated"
	OccupancyBandNormal   = "occupancy_normal"
	OccupancyBandLow      = "occupancy_low"
)

var (
	occupancyPeakMultiplier     = decimal.RequireFromString("1.50")
	occupancyHighMultiplier     = decimal.RequireFromString("1.25")
	occupancyElevatedMultiplier = decimal.RequireFromString("1.10")
	occupancyNormalMultiplier   = decimal.RequireFromString("1.00")
	occupancyLowMultiplier      = decimal.RequireFromString("0.90")
)

// OccupancyBandMultiplier maps a current occupancy ratio to the dynamic
// demand multiplier and the name of the band that fired. This is the single
// source of the band table; boundaries are:
//
//	ratio >= 0.90          -> 1.50
//	0.75 <= ratio < 0.90   -> 1.25
//	0.50 <= ratio < 0.75   -> 1.10
//	0.25 <  ratio < 0.50   -> 1.00
//	ratio <= 0.25          -> 0.90
func OccupancyBandMultiplier(ratio float64) (decimal.Decimal, string) {
	switch {
	case ratio >= 0.90:
		return occupancyPeakMultiplier, OccupancyBandPeak
	case ratio >= 0.75:
		return occupancyHighMultiplier, OccupancyBandHigh
	case ratio >= 0.50:
		return occupancyElevatedMultiplier, OccupancyBandElevated
	case ratio > 0.25:
		return occupancyNormalMultiplier, OccupancyBandNormal
	default:
		return occupancyLowMultiplier, OccupancyBandLow
	}
}
