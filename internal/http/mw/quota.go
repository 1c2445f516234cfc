package mw

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/service"
)

// RequireDailyQuota returns middleware that spends one daily detection
// check before the handler runs. Must run after Auth. The consume is
// atomic, so concurrent requests cannot both take the last check. The
// counter resets at midnight UTC; unlimited tiers pass straight through
// but are still counted.
func RequireDailyQuota(usageSvc *service.UsageService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserClaims(r.Context())
			if claims == nil {
				unauthorized(w, "unauthorized")
				return
			}

			status, err := usageSvc.ConsumeCheck(r.Context(), claims.UserID)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "failed to check quota"})
				return
			}

			// The DB tier is fresher than the token's claim; hand the
			// current one to downstream routing so a mid-session upgrade
			// takes effect without a token refresh.
			tier := claims.Tier
			if status.User != nil && status.User.SubscriptionTier != claims.Tier {
				refreshed := *claims
				refreshed.Tier = status.User.SubscriptionTier
				tier = refreshed.Tier
				r = r.WithContext(context.WithValue(r.Context(), UserClaimsKey, &refreshed))
			}

			if status.Limit > 0 {
				w.Header().Set("X-Quota-Limit", strconv.Itoa(status.Limit))
				w.Header().Set("X-Quota-Remaining", strconv.Itoa(status.Remaining))
			}

			if !status.Allowed {
				retryAfter := int(time.Until(status.ResetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":      "daily quota exceeded",
					"message":    constants.QuotaExceededMessage(tier),
					"limit":      status.Limit,
					"tier":       tier,
					"reset_time": status.ResetAt.UTC().Format(time.RFC3339),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
