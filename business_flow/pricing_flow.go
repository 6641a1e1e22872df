package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/config"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/repository"
	"github.com/parqhive/pricing-service/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PricingFlow defines the write operations over a node's owned pricing
// configuration.
type PricingFlow interface {
	CreateOrUpdatePricing(ctx context.Context, level, nodeUUID string, input *dto.PricingConfigInput, metadata *ClientMetadata) (*dto.CreateOrUpdatePricingResponse, error)
	RemovePricing(ctx context.Context, level, nodeUUID string, metadata *ClientMetadata) (*dto.RemovePricingResponse, error)
}

type PricingFlowImpl struct {
	nodeRepo   repository.HierarchyNodeRepository
	configRepo repository.PricingConfigRepository
	auditRepo  repository.PricingAuditLogRepository
	db         *gorm.DB
	rc         *redis.Client
	pricingCfg config.PricingSettings
}

func NewPricingFlow(
	nodeRepo repository.HierarchyNodeRepository,
	configRepo repository.PricingConfigRepository,
	auditRepo repository.PricingAuditLogRepository,
	db *gorm.DB,
	rc *redis.Client,
	pricingCfg config.PricingSettings,
) PricingFlow {
	return &PricingFlowImpl{
		nodeRepo:   nodeRepo,
		configRepo: configRepo,
		auditRepo:  auditRepo,
		db:         db,
		rc:         rc,
		pricingCfg: pricingCfg,
	}
}

// CreateOrUpdatePricing replaces the node's owned pricing configuration
// wholesale with the given payload. The previous config and all of its rate
// rules are dropped in the same transaction, so a failed write never leaves a
// half-replaced rule set behind.
func (f *PricingFlowImpl) CreateOrUpdatePricing(ctx context.Context, level, nodeUUID string, input *dto.PricingConfigInput, metadata *ClientMetadata) (*dto.CreateOrUpdatePricingResponse, error) {
	if input == nil {
		return nil, NewBusinessError("PRICING_DATA_REQUIRED", "Pricing configuration data is required", ErrPricingConfigDataRequired)
	}
	if !models.IsValidHierarchyLevel(level) {
		return nil, NewBusinessError("INVALID_HIERARCHY_LEVEL", "Invalid hierarchy level", ErrInvalidHierarchyLevel)
	}

	node, err := f.nodeRepo.ByUUIDWithPricing(ctx, nodeUUID)
	if err != nil {
		return nil, NewBusinessError("PRICING_SAVE_FAILED", "Failed to load hierarchy node", err)
	}
	if node == nil {
		return nil, NewBusinessError("NODE_NOT_FOUND", "Hierarchy node not found", ErrNodeNotFound)
	}
	if node.Level != level {
		return nil, NewBusinessError("LEVEL_MISMATCH", "Node level does not match requested level", ErrLevelMismatch)
	}

	cfg, err := buildPricingConfig(node.ID, input)
	if err != nil {
		return nil, err
	}

	existed := node.HasOwnPricing()
	if err := f.configRepo.ReplaceForNode(ctx, node.ID, cfg); err != nil {
		return nil, NewBusinessError("PRICING_SAVE_FAILED", "Failed to save pricing configuration", err)
	}

	invalidateHierarchyCache(ctx, f.nodeRepo, f.rc, node.ID)

	action := models.AuditActionPricingCreated
	message := "Pricing configuration created successfully"
	if existed {
		action = models.AuditActionPricingUpdated
		message = "Pricing configuration updated successfully"
	}
	writePricingAudit(ctx, f.auditRepo, action, node, metadata, map[string]any{
		"base_rate": cfg.BaseRate,
		"vat_rate":  cfg.VATRate,
	})

	stored, err := f.configRepo.ByNodeID(ctx, node.ID)
	if err != nil || stored == nil {
		stored = cfg
	}

	return &dto.CreateOrUpdatePricingResponse{
		Message: message,
		Config:  *ToPricingConfigDTO(stored),
	}, nil
}

// RemovePricing drops the node's owned configuration so it falls back to
// inheritance. Removing from a node that owns nothing is reported, not an
// error state that aborts callers mid-flow.
func (f *PricingFlowImpl) RemovePricing(ctx context.Context, level, nodeUUID string, metadata *ClientMetadata) (*dto.RemovePricingResponse, error) {
	if !models.IsValidHierarchyLevel(level) {
		return nil, NewBusinessError("INVALID_HIERARCHY_LEVEL", "Invalid hierarchy level", ErrInvalidHierarchyLevel)
	}

	node, err := f.nodeRepo.ByUUID(ctx, nodeUUID)
	if err != nil {
		return nil, NewBusinessError("PRICING_REMOVE_FAILED", "Failed to load hierarchy node", err)
	}
	if node == nil {
		return nil, NewBusinessError("NODE_NOT_FOUND", "Hierarchy node not found", ErrNodeNotFound)
	}
	if node.Level != level {
		return nil, NewBusinessError("LEVEL_MISMATCH", "Node level does not match requested level", ErrLevelMismatch)
	}

	removed, err := f.configRepo.DeleteForNode(ctx, node.ID)
	if err != nil {
		return nil, NewBusinessError("PRICING_REMOVE_FAILED", "Failed to remove pricing configuration", err)
	}

	message := "Node owned no pricing configuration"
	if removed {
		message = "Pricing configuration removed successfully"
		invalidateHierarchyCache(ctx, f.nodeRepo, f.rc, node.ID)
		writePricingAudit(ctx, f.auditRepo, models.AuditActionPricingRemoved, node, metadata, nil)
	}

	return &dto.RemovePricingResponse{
		Message: message,
		Removed: removed,
	}, nil
}

// buildPricingConfig validates the payload and assembles the persistence
// model. Rule positions record payload order for deterministic tie-breaking.
func buildPricingConfig(nodeID uint, input *dto.PricingConfigInput) (*models.PricingConfig, error) {
	if input.BaseRate < 0 {
		return nil, NewBusinessError("BASE_RATE_NEGATIVE", "Base rate must not be negative", ErrBaseRateNegative)
	}
	if input.VATRate < 0 || input.VATRate > 100 {
		return nil, NewBusinessError("VAT_RATE_OUT_OF_RANGE", "VAT rate must be between 0 and 100", ErrVATRateOutOfRange)
	}
	if input.OccupancyMultiplier < utils.MinRateMultiplier || input.OccupancyMultiplier > utils.MaxRateMultiplier {
		return nil, NewBusinessError("MULTIPLIER_OUT_OF_RANGE", "Occupancy multiplier must be between 0.1 and 5.0", ErrMultiplierOutOfRange)
	}

	cfg := &models.PricingConfig{
		NodeID:              nodeID,
		BaseRate:            input.BaseRate,
		VATRate:             input.VATRate,
		OccupancyMultiplier: input.OccupancyMultiplier,
	}

	seen := make(map[string]struct{}, len(input.VehicleTypeRates))
	for _, vr := range input.VehicleTypeRates {
		vehicleType := strings.ToLower(strings.TrimSpace(vr.VehicleType))
		if vehicleType == "" {
			return nil, NewBusinessError("VEHICLE_TYPE_REQUIRED", "Vehicle type is required", ErrVehicleTypeRequired)
		}
		if _, dup := seen[vehicleType]; dup {
			return nil, NewBusinessErrorf("DUPLICATE_VEHICLE_TYPE", "Duplicate vehicle type rate: %s", ErrDuplicateVehicleTypeRate, vehicleType)
		}
		seen[vehicleType] = struct{}{}
		if vr.Rate < 0 {
			return nil, NewBusinessError("BASE_RATE_NEGATIVE", "Vehicle rate must not be negative", ErrBaseRateNegative)
		}
		cfg.VehicleTypeRates = append(cfg.VehicleTypeRates, models.VehicleTypeRate{
			VehicleType: vehicleType,
			Rate:        vr.Rate,
		})
	}

	for i, tr := range input.TimeBasedRates {
		if tr.DayOfWeek < 0 || tr.DayOfWeek > 6 {
			return nil, NewBusinessError("DAY_OF_WEEK_OUT_OF_RANGE", "Day of week must be between 0 and 6", ErrDayOfWeekOutOfRange)
		}
		start, err := time.Parse(utils.HHMMLayout, tr.StartTime)
		if err != nil {
			return nil, NewBusinessErrorf("TIME_WINDOW_MALFORMED", "Malformed start time: %s", ErrTimeWindowMalformed, tr.StartTime)
		}
		end, err := time.Parse(utils.HHMMLayout, tr.EndTime)
		if err != nil {
			return nil, NewBusinessErrorf("TIME_WINDOW_MALFORMED", "Malformed end time: %s", ErrTimeWindowMalformed, tr.EndTime)
		}
		if !start.Before(end) {
			return nil, NewBusinessError("TIME_WINDOW_INVERTED", "Time window start must be before end", ErrTimeWindowInverted)
		}
		if tr.Multiplier < utils.MinRateMultiplier || tr.Multiplier > utils.MaxRateMultiplier {
			return nil, NewBusinessError("MULTIPLIER_OUT_OF_RANGE", "Time-based multiplier must be between 0.1 and 5.0", ErrMultiplierOutOfRange)
		}
		cfg.TimeBasedRates = append(cfg.TimeBasedRates, models.TimeBasedRate{
			Name:       strings.TrimSpace(tr.Name),
			DayOfWeek:  tr.DayOfWeek,
			StartTime:  tr.StartTime,
			EndTime:    tr.EndTime,
			Multiplier: tr.Multiplier,
			Position:   i,
		})
	}

	for i, hr := range input.HolidayRates {
		name := strings.TrimSpace(hr.Name)
		if name == "" {
			return nil, NewBusinessError("HOLIDAY_NAME_REQUIRED", "Holiday name is required", ErrHolidayNameRequired)
		}
		date, err := time.Parse(DateLayout, hr.Date)
		if err != nil {
			return nil, NewBusinessErrorf("HOLIDAY_DATE_MALFORMED", "Malformed holiday date: %s", ErrHolidayDateMalformed, hr.Date)
		}
		if hr.Multiplier < utils.MinRateMultiplier || hr.Multiplier > utils.MaxRateMultiplier {
			return nil, NewBusinessError("MULTIPLIER_OUT_OF_RANGE", "Holiday multiplier must be between 0.1 and 5.0", ErrMultiplierOutOfRange)
		}
		cfg.HolidayRates = append(cfg.HolidayRates, models.HolidayRate{
			Name:        name,
			Date:        date,
			IsRecurring: hr.IsRecurring,
			Multiplier:  hr.Multiplier,
			Position:    i,
		})
	}

	return cfg, nil
}
