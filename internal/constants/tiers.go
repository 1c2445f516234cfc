// Package constants defines centralized configuration for tier limits,
// rate limits, and user-facing messages. Change values here to update
// limits across the entire application.
package constants

import (
	"fmt"
	"sync"
	"time"
)

// tiersMu protects concurrent access to the Tiers map.
var tiersMu sync.RWMutex

// Tier names
const (
	TierFree   = "free"
	TierYearly = "yearly"
	TierPro    = "pro"
)

// TierLimits defines the numeric limits for a subscription tier.
type TierLimits struct {
	// DisplayName is the user-facing name for this tier, exposed via the
	// pricing API.
	DisplayName string
	// Visible controls whether this tier appears in the public pricing API.
	Visible bool
	// Order controls the display order in pricing tables (lower = first).
	Order int
	// DailyChecks is the max detection checks per calendar day (0 = unlimited)
	DailyChecks int
	// RequestsPerMinute is the rate limit for detection requests (0 = unlimited)
	RequestsPerMinute int
	// PriceUSD is the plan price in USD, exposed via the pricing API.
	PriceUSD float64
	// BillingInterval is "month" or "year" ("" for free).
	BillingInterval string
	// LiveDetection controls access to the vendor ML detection APIs.
	// Free tier results come from the local heuristic only.
	LiveDetection bool
}

// Tiers defines limits for each subscription tier.
// To change tier limits, modify this map.
var Tiers = map[string]TierLimits{
	TierFree: {
		DisplayName:       "Free",
		Visible:           true,
		Order:             0,
		DailyChecks:       3,
		RequestsPerMinute: 10,
		PriceUSD:          0,
		BillingInterval:   "",
		LiveDetection:     false,
	},
	TierYearly: {
		DisplayName:       "Yearly",
		Visible:           true,
		Order:             1,
		DailyChecks:       0, // Unlimited
		RequestsPerMinute: 30,
		PriceUSD:          39.99,
		BillingInterval:   "year",
		LiveDetection:     true,
	},
	TierPro: {
		DisplayName:       "Pro",
		Visible:           true,
		Order:             2,
		DailyChecks:       0, // Unlimited
		RequestsPerMinute: 60,
		PriceUSD:          9.99,
		BillingInterval:   "month",
		LiveDetection:     true,
	},
}

// GetTierLimits returns the limits for a tier, defaulting to free tier.
// Thread-safe for concurrent access.
func GetTierLimits(tier string) TierLimits {
	tiersMu.RLock()
	defer tiersMu.RUnlock()

	if limits, ok := Tiers[tier]; ok {
		return limits
	}
	return Tiers[TierFree]
}

// IsPaidTier reports whether the tier grants unlimited daily checks.
func IsPaidTier(tier string) bool {
	return tier == TierYearly || tier == TierPro
}

// GetVisibleTiers returns all tiers that are marked as visible.
// Thread-safe for concurrent access.
func GetVisibleTiers() map[string]TierLimits {
	tiersMu.RLock()
	defer tiersMu.RUnlock()

	visible := make(map[string]TierLimits)
	for name, tier := range Tiers {
		if tier.Visible {
			visible[name] = tier
		}
	}
	return visible
}

// Global rate limiting defaults
const (
	// GlobalIPRateLimitPerMinute is the fallback rate limit for unauthenticated requests
	GlobalIPRateLimitPerMinute = 100
	// GlobalConcurrencyLimit is the max concurrent requests the server will handle
	GlobalConcurrencyLimit = 100
	// MaxRequestBodySize is the max request body size in bytes (10MB, media uploads included)
	MaxRequestBodySize = 10 * 1024 * 1024
)

// HTTP request timeouts
const (
	// DefaultRequestTimeout is the timeout for most API endpoints
	DefaultRequestTimeout = 30 * time.Second
	// DetectionRequestTimeout is the extended timeout for detection endpoints,
	// which may involve a retried vendor API call
	DetectionRequestTimeout = 2 * time.Minute
)

// Cache durations for Cache-Control headers
const (
	// CacheMaxAgeShort is for rapidly changing data (health checks, etc.)
	CacheMaxAgeShort = 30 * time.Second
	// CacheMaxAgeMedium is for semi-stable data (pricing, tier info)
	CacheMaxAgeMedium = 5 * time.Minute
	// CacheMaxAgeLong is for stable data (supported language lists)
	CacheMaxAgeLong = 1 * time.Hour
)

// QuotaExceededMessage returns a user-friendly message for daily quota exceeded.
func QuotaExceededMessage(tier string) string {
	limits := GetTierLimits(tier)
	switch tier {
	case TierFree:
		return fmt.Sprintf("You've used all %d free checks for today. Upgrade to Pro for unlimited checks.",
			limits.DailyChecks)
	default:
		if limits.DailyChecks == 0 {
			return "Daily check limit reached. Please contact support."
		}
		return fmt.Sprintf("You've reached your daily limit of %d checks. Please try again tomorrow or upgrade your plan.",
			limits.DailyChecks)
	}
}

// RateLimitExceededMessage returns a user-friendly message for per-minute
// rate limit exceeded.
func RateLimitExceededMessage(tier string) string {
	limits := GetTierLimits(tier)
	if limits.RequestsPerMinute == 0 {
		return "Too many requests. Please slow down."
	}
	return fmt.Sprintf("Rate limit of %d requests per minute exceeded. Please wait before trying again.",
		limits.RequestsPerMinute)
}
