package mw

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/stopfakeai/detection-api/internal/constants"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// TierLimits maps tier names to their requests per minute limit.
	// A value of 0 means unlimited.
	TierLimits map[string]int
	// IPRequestsPerMinute applies to unauthenticated requests by IP.
	IPRequestsPerMinute int
}

// DefaultRateLimitConfig returns defaults from the constants package.
func DefaultRateLimitConfig() RateLimitConfig {
	tierLimits := make(map[string]int)
	for _, tier := range []string{constants.TierFree, constants.TierYearly, constants.TierPro} {
		tierLimits[tier] = constants.GetTierLimits(tier).RequestsPerMinute
	}
	return RateLimitConfig{
		TierLimits:          tierLimits,
		IPRequestsPerMinute: constants.GlobalIPRateLimitPerMinute,
	}
}

// RateLimitByUser returns middleware that rate limits by user ID with a
// per-tier allowance. Must run after Auth; unauthenticated requests fall
// back to IP-based limiting.
func RateLimitByUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	tierLimiters := make(map[string]*httprate.RateLimiter)
	for tier, limit := range cfg.TierLimits {
		if limit > 0 {
			tierLimiters[tier] = httprate.NewRateLimiter(
				limit,
				time.Minute,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					claims := GetUserClaims(r.Context())
					if claims == nil || claims.UserID == "" {
						return httprate.KeyByIP(r)
					}
					return "user:" + claims.UserID, nil
				}),
			)
		}
	}

	fallbackLimiter := httprate.NewRateLimiter(
		cfg.IPRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := constants.TierFree
			if claims := GetUserClaims(r.Context()); claims != nil && claims.Tier != "" {
				tier = claims.Tier
			}

			if limit, ok := cfg.TierLimits[tier]; ok && limit == 0 {
				next.ServeHTTP(w, r)
				return
			}

			limiter, ok := tierLimiters[tier]
			if !ok {
				limiter = fallbackLimiter
			}
			limiter.Handler(next).ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP returns middleware that rate limits by IP address.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}
