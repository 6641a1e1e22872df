package businessflow

import (
	"context"
	"log"
	"time"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/repository"
)

// QuoteFlow computes booking quotes against a node's effective pricing.
type QuoteFlow interface {
	Quote(ctx context.Context, nodeUUID string, req *dto.QuoteRequest) (*dto.QuoteResponse, error)
}

type QuoteFlowImpl struct {
	inheritanceFlow PricingInheritanceFlow
	discountRepo    repository.DiscountConfigurationRepository
}

func NewQuoteFlow(inheritanceFlow PricingInheritanceFlow, discountRepo repository.DiscountConfigurationRepository) QuoteFlow {
	return &QuoteFlowImpl{
		inheritanceFlow: inheritanceFlow,
		discountRepo:    discountRepo,
	}
}

// Quote resolves the node's effective pricing and runs the rate calculation
// for the given booking context. Usage counters of applied discounts are
// bumped after a successful calculation.
func (f *QuoteFlowImpl) Quote(ctx context.Context, nodeUUID string, req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	if req == nil {
		return nil, NewBusinessError("QUOTE_DATA_REQUIRED", "Quote request data is required", ErrQuoteTimestampRequired)
	}

	timestamp, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return nil, NewBusinessErrorf("QUOTE_TIMESTAMP_MALFORMED", "Malformed quote timestamp: %s", ErrQuoteTimestampRequired, req.Timestamp)
	}

	resolved, err := f.inheritanceFlow.ResolveEffective(ctx, nodeUUID)
	if err != nil {
		return nil, err
	}

	discounts, err := f.loadDiscounts(ctx, req.DiscountIDs)
	if err != nil {
		return nil, err
	}

	result, err := CalculatePrice(resolved.EffectivePricing, CalculationContext{
		VehicleType:    req.VehicleType,
		Timestamp:      timestamp,
		OccupancyRatio: req.OccupancyRatio,
		Discounts:      discounts,
	})
	if err != nil {
		return nil, NewBusinessError("QUOTE_FAILED", "Failed to calculate quote", err)
	}

	f.bumpDiscountUsage(ctx, discounts, result.AppliedDiscounts)

	return &dto.QuoteResponse{
		Message: "Quote calculated successfully",
		Quote:   ToPricedResultDTO(result, resolved.Source),
	}, nil
}

// loadDiscounts fetches the requested discounts and fails the quote when any
// UUID is unknown. Requesting a discount that does not exist is a caller bug,
// not a condition to price around silently. Repeated UUIDs count once so a
// duplicated request entry is not mistaken for an unknown discount.
func (f *QuoteFlowImpl) loadDiscounts(ctx context.Context, uuids []string) ([]*models.DiscountConfiguration, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(uuids))
	unique := make([]string, 0, len(uuids))
	for _, id := range uuids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	discounts, err := f.discountRepo.ByUUIDs(ctx, unique)
	if err != nil {
		return nil, NewBusinessError("QUOTE_FAILED", "Failed to load discount configurations", err)
	}
	if len(discounts) != len(unique) {
		return nil, NewBusinessError("DISCOUNT_NOT_FOUND", "One or more discount configurations not found", ErrDiscountNotFound)
	}
	return discounts, nil
}

// bumpDiscountUsage increments usage counters for discounts that actually
// applied. Counter failures are logged; the quote already succeeded.
func (f *QuoteFlowImpl) bumpDiscountUsage(ctx context.Context, discounts []*models.DiscountConfiguration, applied []string) {
	if len(applied) == 0 {
		return
	}
	appliedSet := make(map[string]struct{}, len(applied))
	for _, id := range applied {
		appliedSet[id] = struct{}{}
	}
	for _, discount := range discounts {
		if _, ok := appliedSet[discount.UUID.String()]; !ok {
			continue
		}
		if err := f.discountRepo.IncrementUsage(ctx, discount.ID); err != nil {
			log.Printf("Failed to increment usage for discount %s: %v", discount.UUID, err)
		}
	}
}
