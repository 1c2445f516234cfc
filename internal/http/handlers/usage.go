package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stopfakeai/detection-api/internal/service"
)

// UsageHandler handles usage endpoints.
type UsageHandler struct {
	usageSvc *service.UsageService
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(usageSvc *service.UsageService) *UsageHandler {
	return &UsageHandler{usageSvc: usageSvc}
}

// GetUsageOutput represents the usage response.
type GetUsageOutput struct {
	Body struct {
		Tier        string `json:"tier" doc:"Subscription tier"`
		DailyChecks int    `json:"daily_checks" doc:"Detections used today"`
		Remaining   int    `json:"remaining" doc:"Detections left today (-1 = unlimited)"`
		Limit       int    `json:"limit" doc:"Daily detection limit (0 = unlimited)"`
		ResetAt     string `json:"reset_at,omitempty" doc:"When the daily counter resets (UTC)"`
	}
}

// GetUsage returns the authenticated user's quota standing.
func (h *UsageHandler) GetUsage(ctx context.Context, _ *struct{}) (*GetUsageOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	status, err := h.usageSvc.CanCheck(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load usage")
	}

	out := &GetUsageOutput{}
	out.Body.Tier = status.User.SubscriptionTier
	out.Body.DailyChecks = status.User.DailyChecks
	out.Body.Remaining = status.Remaining
	out.Body.Limit = status.Limit
	if !status.ResetAt.IsZero() {
		out.Body.ResetAt = status.ResetAt.UTC().Format(time.RFC3339)
	}
	return out, nil
}
