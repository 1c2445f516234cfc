package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stopfakeai/detection-api/internal/service"
)

// BillingHandler handles checkout and subscription management endpoints.
type BillingHandler struct {
	billingSvc *service.BillingService
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(billingSvc *service.BillingService) *BillingHandler {
	return &BillingHandler{billingSvc: billingSvc}
}

// CreateCheckoutInput is the checkout request.
type CreateCheckoutInput struct {
	Body struct {
		Tier string `json:"tier" enum:"yearly,pro" doc:"Tier to subscribe to"`
	}
}

// CheckoutURLOutput carries a Stripe-hosted page URL.
type CheckoutURLOutput struct {
	Body struct {
		URL string `json:"url" doc:"Stripe-hosted page to redirect the user to"`
	}
}

// CreateCheckout starts a subscription checkout for the authenticated user.
func (h *BillingHandler) CreateCheckout(ctx context.Context, input *CreateCheckoutInput) (*CheckoutURLOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	url, err := h.billingSvc.CreateCheckoutSession(ctx, userID, input.Body.Tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBillingDisabled):
			return nil, huma.Error503ServiceUnavailable("billing is not available")
		case errors.Is(err, service.ErrUnknownTier):
			return nil, huma.Error400BadRequest(err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return nil, huma.Error404NotFound("user not found")
		default:
			return nil, huma.Error500InternalServerError("failed to start checkout")
		}
	}

	out := &CheckoutURLOutput{}
	out.Body.URL = url
	return out, nil
}

// CreatePortal returns a Stripe customer portal URL.
func (h *BillingHandler) CreatePortal(ctx context.Context, _ *struct{}) (*CheckoutURLOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	url, err := h.billingSvc.CreatePortalSession(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBillingDisabled):
			return nil, huma.Error503ServiceUnavailable("billing is not available")
		case errors.Is(err, service.ErrNoStripeCustomer):
			return nil, huma.Error400BadRequest("no active subscription")
		case errors.Is(err, service.ErrUserNotFound):
			return nil, huma.Error404NotFound("user not found")
		default:
			return nil, huma.Error500InternalServerError("failed to open billing portal")
		}
	}

	out := &CheckoutURLOutput{}
	out.Body.URL = url
	return out, nil
}

// VerifySessionInput identifies a checkout session from the success
// redirect.
type VerifySessionInput struct {
	SessionID string `query:"session_id" required:"true" doc:"Stripe checkout session ID"`
}

// VerifySessionOutput reports the verified payment.
type VerifySessionOutput struct {
	Body struct {
		Tier   string `json:"tier" doc:"Activated tier"`
		Status string `json:"status" doc:"Payment status"`
	}
}

// VerifySession confirms a checkout after the success redirect. Covers the
// window before the webhook lands.
func (h *BillingHandler) VerifySession(ctx context.Context, input *VerifySessionInput) (*VerifySessionOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	payment, err := h.billingSvc.VerifyCheckoutSession(ctx, userID, input.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBillingDisabled):
			return nil, huma.Error503ServiceUnavailable("billing is not available")
		case errors.Is(err, service.ErrSessionNotFound):
			return nil, huma.Error404NotFound("checkout session not found")
		default:
			return nil, huma.Error500InternalServerError("failed to verify checkout")
		}
	}
	if payment == nil {
		return nil, huma.Error404NotFound("checkout session not found")
	}

	out := &VerifySessionOutput{}
	out.Body.Tier = payment.Tier
	out.Body.Status = string(payment.Status)
	return out, nil
}
