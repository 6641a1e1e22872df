package businessflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/models"
)

func newTestPricingFlow(store *fakeStore) PricingFlow {
	return &PricingFlowImpl{
		nodeRepo:   &fakeHierarchyNodeRepo{store: store},
		configRepo: &fakePricingConfigRepo{store: store},
		auditRepo:  &fakeAuditRepo{store: store},
		pricingCfg: testPricingSettings,
	}
}

func validPricingInput() *dto.PricingConfigInput {
	return &dto.PricingConfigInput{
		BaseRate:            50,
		VATRate:             12,
		OccupancyMultiplier: 1.0,
	}
}

func TestCreateOrUpdatePricing(t *testing.T) {
	t.Run("creates an owned config on a bare node", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		resp, err := flow.CreateOrUpdatePricing(context.Background(), models.HierarchyLevelZone, store.nodes[3].UUID.String(), validPricingInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, 50.0, resp.Config.BaseRate)
		require.NotNil(t, store.configs[3])
		assert.Equal(t, uint(3), store.configs[3].NodeID)

		require.Len(t, store.audits, 1)
		assert.Equal(t, models.AuditActionPricingCreated, store.audits[0].Action)
	})

	t.Run("updates an existing config and audits as update", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(3, &models.PricingConfig{BaseRate: 40, VATRate: 12, OccupancyMultiplier: 1.0})
		flow := newTestPricingFlow(store)

		input := validPricingInput()
		input.BaseRate = 70
		resp, err := flow.CreateOrUpdatePricing(context.Background(), models.HierarchyLevelZone, store.nodes[3].UUID.String(), input, nil)
		require.NoError(t, err)
		assert.Equal(t, 70.0, resp.Config.BaseRate)
		assert.Equal(t, 70.0, store.configs[3].BaseRate)

		require.Len(t, store.audits, 1)
		assert.Equal(t, models.AuditActionPricingUpdated, store.audits[0].Action)
	})

	t.Run("normalizes vehicle types and keeps rule order", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		input := validPricingInput()
		input.VehicleTypeRates = []dto.VehicleTypeRateInput{
			{VehicleType: " Car ", Rate: 60},
			{VehicleType: "TRUCK", Rate: 90},
		}
		input.TimeBasedRates = []dto.TimeBasedRateInput{
			{Name: "morning", DayOfWeek: 1, StartTime: "07:00", EndTime: "11:00", Multiplier: 1.5},
			{Name: "evening", DayOfWeek: 1, StartTime: "17:00", EndTime: "20:00", Multiplier: 1.8},
		}
		_, err := flow.CreateOrUpdatePricing(context.Background(), models.HierarchyLevelZone, store.nodes[3].UUID.String(), input, nil)
		require.NoError(t, err)

		stored := store.configs[3]
		require.Len(t, stored.VehicleTypeRates, 2)
		assert.Equal(t, "car", stored.VehicleTypeRates[0].VehicleType)
		assert.Equal(t, "truck", stored.VehicleTypeRates[1].VehicleType)
		require.Len(t, stored.TimeBasedRates, 2)
		assert.Equal(t, 0, stored.TimeBasedRates[0].Position)
		assert.Equal(t, 1, stored.TimeBasedRates[1].Position)
	})

	t.Run("nil input", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		resp, err := flow.CreateOrUpdatePricing(context.Background(), models.HierarchyLevelZone, store.nodes[3].UUID.String(), nil, nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrPricingConfigDataRequired)
	})

	t.Run("level mismatch", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		resp, err := flow.CreateOrUpdatePricing(context.Background(), models.HierarchyLevelSpot, store.nodes[3].UUID.String(), validPricingInput(), nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsLevelMismatch(err))
	})

	t.Run("unknown node", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		resp, err := flow.CreateOrUpdatePricing(context.Background(), models.HierarchyLevelZone, uuid.NewString(), validPricingInput(), nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsNodeNotFound(err))
	})
}

func TestBuildPricingConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dto.PricingConfigInput)
		wantErr error
	}{
		{
			name:    "negative base rate",
			mutate:  func(in *dto.PricingConfigInput) { in.BaseRate = -1 },
			wantErr: ErrBaseRateNegative,
		},
		{
			name:    "VAT rate above one hundred",
			mutate:  func(in *dto.PricingConfigInput) { in.VATRate = 101 },
			wantErr: ErrVATRateOutOfRange,
		},
		{
			name:    "occupancy multiplier below range",
			mutate:  func(in *dto.PricingConfigInput) { in.OccupancyMultiplier = 0.05 },
			wantErr: ErrMultiplierOutOfRange,
		},
		{
			name: "blank vehicle type",
			mutate: func(in *dto.PricingConfigInput) {
				in.VehicleTypeRates = []dto.VehicleTypeRateInput{{VehicleType: "   ", Rate: 60}}
			},
			wantErr: ErrVehicleTypeRequired,
		},
		{
			name: "duplicate vehicle type after normalization",
			mutate: func(in *dto.PricingConfigInput) {
				in.VehicleTypeRates = []dto.VehicleTypeRateInput{
					{VehicleType: "car", Rate: 60},
					{VehicleType: " CAR ", Rate: 65},
				}
			},
			wantErr: ErrDuplicateVehicleTypeRate,
		},
		{
			name: "negative vehicle rate",
			mutate: func(in *dto.PricingConfigInput) {
				in.VehicleTypeRates = []dto.VehicleTypeRateInput{{VehicleType: "car", Rate: -5}}
			},
			wantErr: ErrBaseRateNegative,
		},
		{
			name: "day of week out of range",
			mutate: func(in *dto.PricingConfigInput) {
				in.TimeBasedRates = []dto.TimeBasedRateInput{
					{Name: "bad", DayOfWeek: 7, StartTime: "07:00", EndTime: "11:00", Multiplier: 1.5},
				}
			},
			wantErr: ErrDayOfWeekOutOfRange,
		},
		{
			name: "malformed start time",
			mutate: func(in *dto.PricingConfigInput) {
				in.TimeBasedRates = []dto.TimeBasedRateInput{
					{Name: "bad", DayOfWeek: 1, StartTime: "7am", EndTime: "11:00", Multiplier: 1.5},
				}
			},
			wantErr: ErrTimeWindowMalformed,
		},
		{
			name: "inverted time window",
			mutate: func(in *dto.PricingConfigInput) {
				in.TimeBasedRates = []dto.TimeBasedRateInput{
					{Name: "bad", DayOfWeek: 1, StartTime: "11:00", EndTime: "07:00", Multiplier: 1.5},
				}
			},
			wantErr: ErrTimeWindowInverted,
		},
		{
			name: "empty time window",
			mutate: func(in *dto.PricingConfigInput) {
				in.TimeBasedRates = []dto.TimeBasedRateInput{
					{Name: "bad", DayOfWeek: 1, StartTime: "11:00", EndTime: "11:00", Multiplier: 1.5},
				}
			},
			wantErr: ErrTimeWindowInverted,
		},
		{
			name: "time multiplier out of range",
			mutate: func(in *dto.PricingConfigInput) {
				in.TimeBasedRates = []dto.TimeBasedRateInput{
					{Name: "bad", DayOfWeek: 1, StartTime: "07:00", EndTime: "11:00", Multiplier: 5.5},
				}
			},
			wantErr: ErrMultiplierOutOfRange,
		},
		{
			name: "blank holiday name",
			mutate: func(in *dto.PricingConfigInput) {
				in.HolidayRates = []dto.HolidayRateInput{
					{Name: "  ", Date: "2025-12-25", Multiplier: 1.5},
				}
			},
			wantErr: ErrHolidayNameRequired,
		},
		{
			name: "malformed holiday date",
			mutate: func(in *dto.PricingConfigInput) {
				in.HolidayRates = []dto.HolidayRateInput{
					{Name: "christmas", Date: "25-12-2025", Multiplier: 1.5},
				}
			},
			wantErr: ErrHolidayDateMalformed,
		},
		{
			name: "holiday multiplier out of range",
			mutate: func(in *dto.PricingConfigInput) {
				in.HolidayRates = []dto.HolidayRateInput{
					{Name: "christmas", Date: "2025-12-25", Multiplier: 0.01},
				}
			},
			wantErr: ErrMultiplierOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validPricingInput()
			tt.mutate(input)

			cfg, err := buildPricingConfig(1, input)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRemovePricing(t *testing.T) {
	t.Run("removes an owned config", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(3, &models.PricingConfig{BaseRate: 40, VATRate: 12, OccupancyMultiplier: 1.0})
		flow := newTestPricingFlow(store)

		resp, err := flow.RemovePricing(context.Background(), models.HierarchyLevelZone, store.nodes[3].UUID.String(), nil)
		require.NoError(t, err)
		assert.True(t, resp.Removed)
		assert.Nil(t, store.configs[3])

		require.Len(t, store.audits, 1)
		assert.Equal(t, models.AuditActionPricingRemoved, store.audits[0].Action)
	})

	t.Run("removing from a bare node reports removed false", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		resp, err := flow.RemovePricing(context.Background(), models.HierarchyLevelZone, store.nodes[3].UUID.String(), nil)
		require.NoError(t, err)
		assert.False(t, resp.Removed)
		assert.Empty(t, store.audits)
	})

	t.Run("unknown node", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestPricingFlow(store)

		resp, err := flow.RemovePricing(context.Background(), models.HierarchyLevelZone, uuid.NewString(), nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsNodeNotFound(err))
	})
}
