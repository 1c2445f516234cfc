// Package service contains the business logic layer.
package service

import (
	"log/slog"

	"github.com/stopfakeai/detection-api/internal/apiclient"
	"github.com/stopfakeai/detection-api/internal/auth"
	"github.com/stopfakeai/detection-api/internal/config"
	"github.com/stopfakeai/detection-api/internal/detection"
	"github.com/stopfakeai/detection-api/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Auth      *AuthService
	Usage     *UsageService
	Detection *DetectionService
	Media     *MediaService
	Billing   *BillingService
	Pricing   *PricingService

	Tokens *auth.TokenManager
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	vendorClient := apiclient.New(apiclient.Config{
		Timeout:    cfg.DetectorTimeout,
		MaxRetries: cfg.DetectorMaxRetries,
		RetryDelay: cfg.DetectorRetryDelay,
	}, logger)

	gptzero := apiclient.NewGPTZeroClient(vendorClient, cfg.GPTZeroAPIKey)
	hive := apiclient.NewHiveClient(vendorClient, cfg.HiveAPIKey)
	resemble := apiclient.NewResembleClient(vendorClient, cfg.ResembleAPIKey)

	cache := detection.NewCache(cfg.CacheSize, cfg.CacheTTL)

	authSvc := NewAuthService(repos, tokens, logger)
	usageSvc := NewUsageService(repos, cfg.FreeDailyChecks, logger)
	detectionSvc := NewDetectionService(cfg, cache, gptzero, logger)
	mediaSvc := NewMediaService(hive, resemble, logger)
	billingSvc := NewBillingService(cfg, repos, logger)
	pricingSvc := NewPricingService(cfg, logger)

	return &Services{
		Auth:      authSvc,
		Usage:     usageSvc,
		Detection: detectionSvc,
		Media:     mediaSvc,
		Billing:   billingSvc,
		Pricing:   pricingSvc,
		Tokens:    tokens,
	}, nil
}
