// Package businessflow contains the core business logic and use cases for pricing workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Hierarchy errors
	ErrNodeNotFound          = errors.New("hierarchy node not found")
	ErrLocationNotFound      = errors.New("location not found")
	ErrInvalidHierarchyLevel = errors.New("invalid hierarchy level")
	ErrLevelMismatch         = errors.New("node level does not match requested level")

	// Pricing configuration validation errors
	ErrBaseRateNegative          = errors.New("base rate must not be negative")
	ErrVATRateOutOfRange         = errors.New("VAT rate must be between 0 and 100")
	ErrMultiplierOutOfRange      = errors.New("multiplier must be between 0.1 and 5.0")
	ErrDuplicateVehicleTypeRate  = errors.New("duplicate vehicle type rate")
	ErrVehicleTypeRequired       = errors.New("vehicle type is required")
	ErrTimeWindowMalformed       = errors.New("time window is malformed")
	ErrTimeWindowInverted        = errors.New("time window start must be before end")
	ErrDayOfWeekOutOfRange       = errors.New("day of week must be between 0 and 6")
	ErrHolidayNameRequired       = errors.New("holiday name is required")
	ErrHolidayDateMalformed      = errors.New("holiday date is malformed")
	ErrOccupancyRatioOutOfRange  = errors.New("occupancy ratio must be between 0 and 1")
	ErrQuoteTimestampRequired    = errors.New("quote timestamp is required")
	ErrNoPricingToRemove         = errors.New("node owns no pricing configuration")
	ErrPricingConfigDataRequired = errors.New("pricing configuration data is required")

	// Discount errors
	ErrDiscountNotFound           = errors.New("discount configuration not found")
	ErrDiscountNameRequired       = errors.New("discount name is required")
	ErrDiscountTypeInvalid        = errors.New("discount type must be senior, pwd, or custom")
	ErrDiscountPercentOutOfRange  = errors.New("discount percentage must be between 0 and 100")
	ErrDiscountAccessDenied       = errors.New("discount belongs to another operator")
	ErrDiscountConditionsInvalid  = errors.New("discount conditions are invalid")
	ErrDiscountUpdateFieldMissing = errors.New("at least one field must be provided for update")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

func IsLocationNotFound(err error) bool {
	return errors.Is(err, ErrLocationNotFound)
}

func IsInvalidHierarchyLevel(err error) bool {
	return errors.Is(err, ErrInvalidHierarchyLevel)
}

func IsLevelMismatch(err error) bool {
	return errors.Is(err, ErrLevelMismatch)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrBaseRateNegative) ||
		errors.Is(err, ErrVATRateOutOfRange) ||
		errors.Is(err, ErrMultiplierOutOfRange) ||
		errors.Is(err, ErrVehicleTypeRequired) ||
		errors.Is(err, ErrTimeWindowMalformed) ||
		errors.Is(err, ErrTimeWindowInverted) ||
		errors.Is(err, ErrDayOfWeekOutOfRange) ||
		errors.Is(err, ErrHolidayNameRequired) ||
		errors.Is(err, ErrHolidayDateMalformed) ||
		errors.Is(err, ErrOccupancyRatioOutOfRange) ||
		errors.Is(err, ErrQuoteTimestampRequired) ||
		errors.Is(err, ErrPricingConfigDataRequired) ||
		errors.Is(err, ErrDiscountNameRequired) ||
		errors.Is(err, ErrDiscountTypeInvalid) ||
		errors.Is(err, ErrDiscountPercentOutOfRange) ||
		errors.Is(err, ErrDiscountConditionsInvalid) ||
		errors.Is(err, ErrDiscountUpdateFieldMissing)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateVehicleTypeRate)
}

func IsDuplicateVehicleTypeRate(err error) bool {
	return errors.Is(err, ErrDuplicateVehicleTypeRate)
}

func IsNoPricingToRemove(err error) bool {
	return errors.Is(err, ErrNoPricingToRemove)
}

func IsDiscountNotFound(err error) bool {
	return errors.Is(err, ErrDiscountNotFound)
}

func IsDiscountAccessDenied(err error) bool {
	return errors.Is(err, ErrDiscountAccessDenied)
}
