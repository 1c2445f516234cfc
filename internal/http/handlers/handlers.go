// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"

	"github.com/stopfakeai/detection-api/internal/http/mw"
	"github.com/stopfakeai/detection-api/internal/version"
)

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

// HealthCheck returns the health status of the API.
func HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Get().Short()
	return out, nil
}

// getUserID extracts user ID from context.
func getUserID(ctx context.Context) string {
	claims := mw.GetUserClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// getUserTier extracts the user's subscription tier from context. The
// quota middleware refreshes the claim from the database before
// detection handlers run.
func getUserTier(ctx context.Context) string {
	claims := mw.GetUserClaims(ctx)
	if claims == nil {
		return "free"
	}
	return claims.Tier
}
