package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOccupancyBandMultiplier(t *testing.T) {
	tests := []struct {
		name           string
		ratio          float64
		wantMultiplier string
		wantBand       string
	}{
		{
			name:           "empty lot",
			ratio:          0,
			wantMultiplier: "0.90",
			wantBand:       OccupancyBandLow,
		},
		{
			name:           "low band upper boundary is inclusive",
			ratio:          0.25,
			wantMultiplier: "0.90",
			wantBand:       OccupancyBandLow,
		},
		{
			name:           "just above low band",
			ratio:          0.2501,
			wantMultiplier: "1.00",
			wantBand:       OccupancyBandNormal,
		},
		{
			name:           "normal band midpoint",
			ratio:          0.40,
			wantMultiplier: "1.00",
			wantBand:       OccupancyBandNormal,
		},
		{
			name:           "elevated band lower boundary is inclusive",
			ratio:          0.50,
			wantMultiplier: "1.10",
			wantBand:       OccupancyBandElevated,
		},
		{
			name:           "just below high band",
			ratio:          0.7499,
			wantMultiplier: "1.10",
			wantBand:       OccupancyBandElevated,
		},
		{
			name:           "high band lower boundary is inclusive",
			ratio:          0.75,
			wantMultiplier: "1.25",
			wantBand:       OccupancyBandHigh,
		},
		{
			name:           "just below peak band",
			ratio:          0.8999,
			wantMultiplier: "1.25",
			wantBand:       OccupancyBandHigh,
		},
		{
			name:           "peak band lower boundary is inclusive",
			ratio:          0.90,
			wantMultiplier: "1.50",
			wantBand:       OccupancyBandPeak,
		},
		{
			name:           "full lot",
			ratio:          1,
			wantMultiplier: "1.50",
			wantBand:       OccupancyBandPeak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			multiplier, band := OccupancyBandMultiplier(tt.ratio)
			assert.Equal(t, tt.wantMultiplier, multiplier.StringFixed(2))
			assert.Equal(t, tt.wantBand, band)
		})
	}
}
