package service

import (
	"log/slog"
	"sort"

	"github.com/stopfakeai/detection-api/internal/config"
	"github.com/stopfakeai/detection-api/internal/constants"
)

// Plan is a publicly visible subscription plan.
type Plan struct {
	Tier              string  `json:"tier"`
	DisplayName       string  `json:"display_name"`
	PriceUSD          float64 `json:"price_usd"`
	BillingInterval   string  `json:"billing_interval,omitempty"`
	DailyChecks       int     `json:"daily_checks"`
	RequestsPerMinute int     `json:"requests_per_minute"`
	LiveDetection     bool    `json:"live_detection"`
	Purchasable       bool    `json:"purchasable"`
}

// PricingService exposes the plan catalog.
type PricingService struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPricingService creates a new pricing service.
func NewPricingService(cfg *config.Config, logger *slog.Logger) *PricingService {
	return &PricingService{
		cfg:    cfg,
		logger: logger,
	}
}

// Plans returns the visible plans in display order. Paid plans are only
// purchasable when billing is configured with a matching price ID.
func (s *PricingService) Plans() []Plan {
	tiers := constants.GetVisibleTiers()

	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return tiers[names[i]].Order < tiers[names[j]].Order
	})

	plans := make([]Plan, 0, len(names))
	for _, name := range names {
		limits := tiers[name]
		plans = append(plans, Plan{
			Tier:              name,
			DisplayName:       limits.DisplayName,
			PriceUSD:          limits.PriceUSD,
			BillingInterval:   limits.BillingInterval,
			DailyChecks:       limits.DailyChecks,
			RequestsPerMinute: limits.RequestsPerMinute,
			LiveDetection:     limits.LiveDetection,
			Purchasable:       s.purchasable(name),
		})
	}
	return plans
}

func (s *PricingService) purchasable(tier string) bool {
	if !s.cfg.BillingEnabled() {
		return false
	}
	switch tier {
	case constants.TierYearly:
		return s.cfg.StripePriceYearly != ""
	case constants.TierPro:
		return s.cfg.StripePricePro != ""
	default:
		return false
	}
}
