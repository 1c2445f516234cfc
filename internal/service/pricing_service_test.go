package service

import (
	"testing"

	"github.com/stopfakeai/detection-api/internal/constants"
)

// ========================================
// Plan Catalog Tests
// ========================================

func TestPlans_OrderAndContents(t *testing.T) {
	svc := NewPricingService(billingConfig(), testLogger())

	plans := svc.Plans()
	if len(plans) != 3 {
		t.Fatalf("len(plans) = %d, want 3", len(plans))
	}
	if plans[0].Tier != constants.TierFree {
		t.Errorf("plans[0].Tier = %q, want %q", plans[0].Tier, constants.TierFree)
	}

	for _, p := range plans {
		limits := constants.GetTierLimits(p.Tier)
		if p.PriceUSD != limits.PriceUSD {
			t.Errorf("%s: PriceUSD = %v, want %v", p.Tier, p.PriceUSD, limits.PriceUSD)
		}
		if p.DailyChecks != limits.DailyChecks {
			t.Errorf("%s: DailyChecks = %d, want %d", p.Tier, p.DailyChecks, limits.DailyChecks)
		}
		if p.LiveDetection != limits.LiveDetection {
			t.Errorf("%s: LiveDetection = %v, want %v", p.Tier, p.LiveDetection, limits.LiveDetection)
		}
	}
}

func TestPlans_Purchasable(t *testing.T) {
	svc := NewPricingService(billingConfig(), testLogger())

	for _, p := range svc.Plans() {
		wantPurchasable := p.Tier != constants.TierFree
		if p.Purchasable != wantPurchasable {
			t.Errorf("%s: Purchasable = %v, want %v", p.Tier, p.Purchasable, wantPurchasable)
		}
	}
}

func TestPlans_BillingDisabled(t *testing.T) {
	svc := NewPricingService(testConfig(), testLogger())

	for _, p := range svc.Plans() {
		if p.Purchasable {
			t.Errorf("%s: Purchasable = true with billing disabled", p.Tier)
		}
	}
}

func TestPlans_MissingPriceNotPurchasable(t *testing.T) {
	c := billingConfig()
	c.StripePriceYearly = ""
	svc := NewPricingService(c, testLogger())

	for _, p := range svc.Plans() {
		if p.Tier == constants.TierYearly && p.Purchasable {
			t.Error("yearly plan purchasable without a configured price")
		}
		if p.Tier == constants.TierPro && !p.Purchasable {
			t.Error("pro plan not purchasable with a configured price")
		}
	}
}
