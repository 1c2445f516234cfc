package handlers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/stopfakeai/detection-api/internal/constants"
)

// ========================================
// Billing Handler Tests
// ========================================

func TestCreateCheckout_Unauthenticated(t *testing.T) {
	env := setupEnv(t)
	h := NewBillingHandler(env.services.Billing)

	input := &CreateCheckoutInput{}
	input.Body.Tier = constants.TierPro

	if _, err := h.CreateCheckout(context.Background(), input); err == nil {
		t.Error("expected error without claims")
	}
}

func TestCreateCheckout_BillingDisabled(t *testing.T) {
	env := setupEnv(t)
	h := NewBillingHandler(env.services.Billing)
	user := env.createUser(t, "checkout@example.com", constants.TierFree)

	input := &CreateCheckoutInput{}
	input.Body.Tier = constants.TierPro

	if _, err := h.CreateCheckout(authedContext(user), input); err == nil {
		t.Error("expected error with billing unconfigured")
	}
}

func TestCreatePortal_NoSubscription(t *testing.T) {
	env := setupEnv(t)
	env.cfg.StripeSecretKey = "sk_test_123"
	h := NewBillingHandler(env.services.Billing)
	user := env.createUser(t, "portal@example.com", constants.TierFree)

	if _, err := h.CreatePortal(authedContext(user), nil); err == nil {
		t.Error("expected error for user without a Stripe customer")
	}
}

// ========================================
// Stripe Webhook Tests
// ========================================

const webhookSecret = "whsec_test_secret"

func webhookEnv(t *testing.T) (*testEnv, *StripeWebhookHandler) {
	t.Helper()
	env := setupEnv(t)
	env.cfg.StripeSecretKey = "sk_test_123"
	env.cfg.StripeWebhookSecret = webhookSecret
	env.cfg.StripePricePro = "price_pro"
	env.cfg.StripePriceYearly = "price_yearly"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return env, NewStripeWebhookHandler(env.cfg, env.services.Billing, logger)
}

// signedWebhookRequest builds a request with a valid Stripe signature.
func signedWebhookRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, webhookSecret)
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", header)
	return req
}

func checkoutEventPayload(t *testing.T, userID, tier string) []byte {
	t.Helper()
	session := map[string]any{
		"id":             "cs_test_001",
		"object":         "checkout.session",
		"amount_total":   999,
		"currency":       "usd",
		"payment_status": "paid",
		"metadata":       map[string]string{"user_id": userID, "tier": tier},
		"customer":       "cus_hook",
		"subscription":   "sub_hook",
	}
	event := map[string]any{
		"id":   "evt_test_001",
		"type": "checkout.session.completed",
		"data": map[string]any{"object": session},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return payload
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	_, h := webhookEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleWebhook_CheckoutCompleted(t *testing.T) {
	env, h := webhookEnv(t)
	user := env.createUser(t, "hook@example.com", constants.TierFree)

	req := signedWebhookRequest(t, checkoutEventPayload(t, user.ID, constants.TierPro))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	got, err := env.repos.User.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SubscriptionTier != constants.TierPro {
		t.Errorf("SubscriptionTier = %q, want %q", got.SubscriptionTier, constants.TierPro)
	}

	payment, err := env.repos.Payment.GetBySessionID(context.Background(), "cs_test_001")
	if err != nil {
		t.Fatalf("GetBySessionID() error = %v", err)
	}
	if payment == nil {
		t.Fatal("payment not recorded")
	}
}

func TestHandleWebhook_UnhandledEventType(t *testing.T) {
	_, h := webhookEnv(t)

	payload := []byte(`{"id":"evt_x","type":"invoice.created","data":{"object":{}}}`)
	req := signedWebhookRequest(t, payload)
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
