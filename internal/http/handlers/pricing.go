package handlers

import (
	"context"

	"github.com/stopfakeai/detection-api/internal/service"
)

// PricingHandler serves the public plan catalog.
type PricingHandler struct {
	pricingSvc *service.PricingService
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(pricingSvc *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingSvc: pricingSvc}
}

// ListPlansOutput is the response for the plan catalog endpoint.
type ListPlansOutput struct {
	Body struct {
		Plans []service.Plan `json:"plans" doc:"Visible plans in display order"`
	}
}

// ListPlans returns the visible subscription plans. Public endpoint for
// pricing pages.
func (h *PricingHandler) ListPlans(ctx context.Context, _ *struct{}) (*ListPlansOutput, error) {
	out := &ListPlansOutput{}
	out.Body.Plans = h.pricingSvc.Plans()
	return out, nil
}
