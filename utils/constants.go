package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Request-scoped context keys set by handlers and consumed by flows for
// audit logging and observability.
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
	OperatorIDKey ContextKey = "operator_id"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Pricing constants
const (
	// PHPCurrency is the currency code for all monetary amounts
	PHPCurrency = "PHP"

	// DefaultBaseRate is the hourly base rate used when no node in a
	// hierarchy chain owns a pricing configuration
	DefaultBaseRate = 50.0

	// DefaultVATRate is the VAT percentage applied by the system default
	// pricing configuration
	DefaultVATRate = 12.0

	// MinRateMultiplier and MaxRateMultiplier bound every configurable
	// multiplier (occupancy, time-based, holiday)
	MinRateMultiplier = 0.1
	MaxRateMultiplier = 5.0

	// HierarchyCacheTTL is how long a resolved hierarchy snapshot stays in
	// the cache before it is refetched from the store
	HierarchyCacheTTL = 5 * time.Minute
)

// HHMMLayout is the layout for time-of-day window bounds ("HH:MM").
const HHMMLayout = "15:04"
