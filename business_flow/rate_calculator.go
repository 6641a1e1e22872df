package businessflow

import (
	"strings"
	"time"

	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/utils"
	"github.com/shopspring/decimal"
)

// Multiplier rule names used in quote breakdowns alongside the configured
// rule names.
const (
	RuleNameStaticOccupancy = "occupancy_multiplier"
)

var (
	decimalOneHundred = decimal.NewFromInt(100)
)

// CalculationContext is the booking context a price is computed against.
// Discounts are pre-fetched by the caller; the calculator itself is pure.
type CalculationContext struct {
	VehicleType    string
	Timestamp      time.Time
	OccupancyRatio float64
	Discounts      []*models.DiscountConfiguration
}

// AppliedMultiplier is one entry of the ordered audit trail of rules that
// fired during a calculation.
type AppliedMultiplier struct {
	RuleName   string
	Multiplier decimal.Decimal
}

// PricedResult is the outcome of one rate calculation.
type PricedResult struct {
	BaseRate           decimal.Decimal
	AppliedMultipliers []AppliedMultiplier
	// Subtotal is the running rate after all multipliers, before discounts
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	VATAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	VATExempt      bool
	// AppliedDiscounts lists the UUIDs of discounts that actually applied
	AppliedDiscounts []string
}

// CalculatePrice combines an effective pricing configuration with a booking
// context into a chargeable amount. Steps run in a fixed order; reordering
// them silently changes revenue:
//
//  1. base selection (vehicle-type rate, else base rate)
//  2. time-of-day multiplier
//  3. holiday multiplier
//  4. dynamic occupancy band x static occupancy multiplier
//  5. additive discount stacking against the pre-discount subtotal
//  6. VAT (zeroed when any applied discount is VAT-exempt)
func CalculatePrice(config *models.PricingConfig, calcCtx CalculationContext) (*PricedResult, error) {
	if err := validateConfigForCalculation(config); err != nil {
		return nil, err
	}
	if calcCtx.Timestamp.IsZero() {
		return nil, ErrQuoteTimestampRequired
	}
	if calcCtx.OccupancyRatio < 0 || calcCtx.OccupancyRatio > 1 {
		return nil, ErrOccupancyRatioOutOfRange
	}

	// Step 1: base selection. Vehicle types are stored lowercased and
	// trimmed, so the lookup key is normalized the same way.
	baseRate := decimal.NewFromFloat(config.BaseRate)
	if vehicleType := strings.ToLower(strings.TrimSpace(calcCtx.VehicleType)); vehicleType != "" {
		if rate, ok := config.VehicleRate(vehicleType); ok {
			baseRate = decimal.NewFromFloat(rate)
		}
	}

	running := baseRate
	var applied []AppliedMultiplier

	// Step 2: time-of-day adjustment
	if rule := matchTimeBasedRate(config.TimeBasedRates, calcCtx.Timestamp); rule != nil {
		m := decimal.NewFromFloat(rule.Multiplier)
		running = running.Mul(m)
		applied = append(applied, AppliedMultiplier{RuleName: rule.Name, Multiplier: m})
	}

	// Step 3: holiday adjustment, composing multiplicatively with step 2
	if rule := matchHolidayRate(config.HolidayRates, calcCtx.Timestamp); rule != nil {
		m := decimal.NewFromFloat(rule.Multiplier)
		running = running.Mul(m)
		applied = append(applied, AppliedMultiplier{RuleName: rule.Name, Multiplier: m})
	}

	// Step 4: dynamic occupancy band, then the node's static multiplier
	bandMultiplier, bandName := OccupancyBandMultiplier(calcCtx.OccupancyRatio)
	running = running.Mul(bandMultiplier)
	applied = append(applied, AppliedMultiplier{RuleName: bandName, Multiplier: bandMultiplier})

	staticMultiplier := decimal.NewFromFloat(config.OccupancyMultiplier)
	if !staticMultiplier.Equal(decimal.NewFromInt(1)) {
		running = running.Mul(staticMultiplier)
		applied = append(applied, AppliedMultiplier{RuleName: RuleNameStaticOccupancy, Multiplier: staticMultiplier})
	}

	subtotal := running

	// Step 5: discounts, additive against the pre-discount subtotal,
	// clamped so the post-discount rate never drops below zero
	totalPercent := decimal.Zero
	vatExempt := false
	var appliedDiscounts []string
	for _, d := range calcCtx.Discounts {
		if d == nil || !utils.IsTrue(d.IsActive) {
			continue
		}
		ok, err := discountConditionsSatisfied(d, subtotal)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		totalPercent = totalPercent.Add(decimal.NewFromFloat(d.Percentage))
		if utils.IsTrue(d.IsVATExempt) {
			vatExempt = true
		}
		appliedDiscounts = append(appliedDiscounts, d.UUID.String())
	}
	if totalPercent.GreaterThan(decimalOneHundred) {
		totalPercent = decimalOneHundred
	}
	discountAmount := subtotal.Mul(totalPercent).Div(decimalOneHundred)
	postDiscount := subtotal.Sub(discountAmount)

	// Step 6: VAT
	vatAmount := decimal.Zero
	if !vatExempt {
		vatAmount = postDiscount.Mul(decimal.NewFromFloat(config.VATRate)).Div(decimalOneHundred)
	}

	total := postDiscount.Add(vatAmount)

	return &PricedResult{
		BaseRate:           baseRate,
		AppliedMultipliers: applied,
		Subtotal:           subtotal.Round(2),
		DiscountAmount:     discountAmount.Round(2),
		VATAmount:          vatAmount.Round(2),
		TotalAmount:        total.Round(2),
		VATExempt:          vatExempt,
		AppliedDiscounts:   appliedDiscounts,
	}, nil
}

// matchTimeBasedRate finds the rule whose weekday and window contain the
// timestamp. Overlapping windows resolve to the narrowest one; equal widths
// fall back to list order.
func matchTimeBasedRate(rules []models.TimeBasedRate, at time.Time) *models.TimeBasedRate {
	var best *models.TimeBasedRate
	for i := range rules {
		rule := &rules[i]
		if !rule.Contains(at) {
			continue
		}
		if best == nil || rule.WindowWidth() < best.WindowWidth() {
			best = rule
		}
	}
	return best
}

// matchHolidayRate finds a holiday matching the timestamp's calendar date.
// Exact-date rules take precedence over recurring ones; within each group
// list order wins.
func matchHolidayRate(rules []models.HolidayRate, at time.Time) *models.HolidayRate {
	for i := range rules {
		rule := &rules[i]
		if !rule.IsRecurring && rule.Matches(at) {
			return rule
		}
	}
	for i := range rules {
		rule := &rules[i]
		if rule.IsRecurring && rule.Matches(at) {
			return rule
		}
	}
	return nil
}

func discountConditionsSatisfied(d *models.DiscountConfiguration, subtotal decimal.Decimal) (bool, error) {
	conditions, err := d.ParseConditions()
	if err != nil {
		return false, NewBusinessError("DISCOUNT_CONDITIONS_INVALID", "Failed to parse discount conditions", ErrDiscountConditionsInvalid)
	}
	if conditions.MinAmount != nil && subtotal.LessThan(decimal.NewFromFloat(*conditions.MinAmount)) {
		return false, nil
	}
	if conditions.MaxUsage != nil && d.UsageCount >= *conditions.MaxUsage {
		return false, nil
	}
	return true, nil
}

func validateConfigForCalculation(config *models.PricingConfig) error {
	if config == nil {
		return ErrPricingConfigDataRequired
	}
	if config.BaseRate < 0 {
		return ErrBaseRateNegative
	}
	if outsideMultiplierRange(config.OccupancyMultiplier) {
		return ErrMultiplierOutOfRange
	}
	for _, tr := range config.TimeBasedRates {
		if outsideMultiplierRange(tr.Multiplier) {
			return ErrMultiplierOutOfRange
		}
	}
	for _, hr := range config.HolidayRates {
		if outsideMultiplierRange(hr.Multiplier) {
			return ErrMultiplierOutOfRange
		}
	}
	return nil
}

func outsideMultiplierRange(m float64) bool {
	return m < utils.MinRateMultiplier || m > utils.MaxRateMultiplier
}
