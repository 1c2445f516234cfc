package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stripe/stripe-go/v78"
	portalsession "github.com/stripe/stripe-go/v78/billingportal/session"
	"github.com/stripe/stripe-go/v78/checkout/session"

	"github.com/stopfakeai/detection-api/internal/config"
	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/models"
	"github.com/stopfakeai/detection-api/internal/repository"
)

var (
	ErrBillingDisabled  = errors.New("billing is not configured")
	ErrUnknownTier      = errors.New("unknown subscription tier")
	ErrNoStripeCustomer = errors.New("no billing profile for this user")
	ErrSessionNotFound  = errors.New("checkout session not found")
)

// BillingService handles Stripe checkout, the customer portal, and
// subscription lifecycle events delivered via webhooks.
type BillingService struct {
	cfg    *config.Config
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) *BillingService {
	// stripe-go uses a package-level key.
	stripe.Key = cfg.StripeSecretKey

	return &BillingService{
		cfg:    cfg,
		repos:  repos,
		logger: logger,
	}
}

// PriceForTier maps a paid tier to its configured Stripe price ID.
func (s *BillingService) PriceForTier(tier string) (string, error) {
	switch tier {
	case constants.TierYearly:
		return s.cfg.StripePriceYearly, nil
	case constants.TierPro:
		return s.cfg.StripePricePro, nil
	default:
		return "", ErrUnknownTier
	}
}

// TierForPrice maps a Stripe price ID back to a tier. Unknown prices map
// to free so a misconfigured webhook can never grant paid access.
func (s *BillingService) TierForPrice(priceID string) string {
	switch priceID {
	case s.cfg.StripePriceYearly:
		if priceID != "" {
			return constants.TierYearly
		}
	case s.cfg.StripePricePro:
		if priceID != "" {
			return constants.TierPro
		}
	}
	return constants.TierFree
}

// CreateCheckoutSession starts a Stripe subscription checkout for tier and
// returns the hosted checkout URL.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID, tier string) (string, error) {
	if !s.cfg.BillingEnabled() {
		return "", ErrBillingDisabled
	}

	priceID, err := s.PriceForTier(tier)
	if err != nil {
		return "", err
	}
	if priceID == "" {
		return "", fmt.Errorf("no Stripe price configured for tier %q", tier)
	}

	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.cfg.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.BaseURL + "/pricing"),
	}
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}
	params.AddMetadata("user_id", user.ID)
	params.AddMetadata("tier", tier)
	params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
		Metadata: map[string]string{"user_id": user.ID, "tier": tier},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("created checkout session", "user_id", user.ID, "tier", tier, "session_id", sess.ID)
	return sess.URL, nil
}

// CreatePortalSession returns a Stripe customer portal URL for managing an
// existing subscription.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	if !s.cfg.BillingEnabled() {
		return "", ErrBillingDisabled
	}

	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.StripeCustomerID == "" {
		return "", ErrNoStripeCustomer
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.BaseURL + "/account"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// VerifyCheckoutSession confirms a completed checkout from the success
// redirect and applies the upgrade if the webhook has not landed yet.
func (s *BillingService) VerifyCheckoutSession(ctx context.Context, userID, sessionID string) (*models.Payment, error) {
	if !s.cfg.BillingEnabled() {
		return nil, ErrBillingDisabled
	}

	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if sess.Metadata["user_id"] != userID {
		return nil, ErrSessionNotFound
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, fmt.Errorf("checkout session not paid: %s", sess.PaymentStatus)
	}

	return s.applyCheckout(ctx, sess)
}

// ApplyCheckoutCompleted processes a checkout.session.completed webhook
// event. Idempotent per session ID.
func (s *BillingService) ApplyCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	_, err := s.applyCheckout(ctx, sess)
	return err
}

func (s *BillingService) applyCheckout(ctx context.Context, sess *stripe.CheckoutSession) (*models.Payment, error) {
	userID := sess.Metadata["user_id"]
	if userID == "" {
		s.logger.Warn("checkout session missing user_id metadata", "session_id", sess.ID)
		return nil, nil
	}
	tier := sess.Metadata["tier"]
	if _, ok := constants.Tiers[tier]; !ok || tier == constants.TierFree {
		return nil, ErrUnknownTier
	}

	// Already recorded: the success redirect and the webhook can race.
	if existing, err := s.repos.Payment.GetBySessionID(ctx, sess.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	subscriptionID := ""
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}

	if err := s.repos.User.UpdateSubscription(ctx, userID, tier, customerID, subscriptionID); err != nil {
		return nil, fmt.Errorf("failed to upgrade user: %w", err)
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		ID:              ulid.Make().String(),
		UserID:          userID,
		StripeSessionID: sess.ID,
		Tier:            tier,
		AmountCents:     sess.AmountTotal,
		Currency:        string(sess.Currency),
		Status:          models.PaymentStatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repos.Payment.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info("subscription activated",
		"user_id", userID,
		"tier", tier,
		"session_id", sess.ID,
	)
	return payment, nil
}

// ApplySubscriptionCanceled processes customer.subscription.deleted:
// the user drops back to the free tier.
func (s *BillingService) ApplySubscriptionCanceled(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userForSubscription(ctx, sub)
	if err != nil || user == nil {
		return err
	}

	if err := s.repos.User.UpdateSubscription(ctx, user.ID, constants.TierFree, "", ""); err != nil {
		return fmt.Errorf("failed to downgrade user: %w", err)
	}

	s.logger.Info("subscription canceled", "user_id", user.ID, "subscription_id", sub.ID)
	return nil
}

// ApplySubscriptionUpdated processes customer.subscription.updated: plan
// changes made in the portal adjust the stored tier.
func (s *BillingService) ApplySubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userForSubscription(ctx, sub)
	if err != nil || user == nil {
		return err
	}

	priceID := ""
	if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}
	tier := s.TierForPrice(priceID)
	if sub.Status != stripe.SubscriptionStatusActive && sub.Status != stripe.SubscriptionStatusTrialing {
		tier = constants.TierFree
	}

	if tier == user.SubscriptionTier {
		return nil
	}

	subscriptionID := sub.ID
	if tier == constants.TierFree {
		subscriptionID = ""
	}
	if err := s.repos.User.UpdateSubscription(ctx, user.ID, tier, "", subscriptionID); err != nil {
		return fmt.Errorf("failed to update subscription tier: %w", err)
	}

	s.logger.Info("subscription updated",
		"user_id", user.ID,
		"tier", tier,
		"status", sub.Status,
	)
	return nil
}

// userForSubscription resolves the owning user via metadata, then the
// subscription ID, then the customer ID.
func (s *BillingService) userForSubscription(ctx context.Context, sub *stripe.Subscription) (*models.User, error) {
	if userID := sub.Metadata["user_id"]; userID != "" {
		return s.repos.User.GetByID(ctx, userID)
	}

	user, err := s.repos.User.GetBySubscriptionID(ctx, sub.ID)
	if err != nil || user != nil {
		return user, err
	}

	if sub.Customer != nil {
		return s.repos.User.GetByStripeCustomerID(ctx, sub.Customer.ID)
	}

	s.logger.Warn("could not resolve user for subscription", "subscription_id", sub.ID)
	return nil, nil
}
