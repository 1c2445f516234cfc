package detection

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stopfakeai/detection-api/internal/apiclient"
	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/language"
)

// shortTextThreshold is the length below which paid tiers still use the
// local heuristic rather than spending a vendor call.
const shortTextThreshold = 500

// TextDetector is the vendor surface the router calls for live detection.
type TextDetector interface {
	IsConfigured() bool
	DetectText(ctx context.Context, text string) (*apiclient.GPTZeroResponse, error)
}

// Router picks the detection path for a request: cached result first, then
// the vendor API or the local heuristic depending on the caller's tier.
type Router struct {
	cache      *Cache
	classifier *Classifier
	vendor     TextDetector
	logger     *slog.Logger
}

// NewRouter creates a router. vendor may be nil when no vendor API key is
// configured; all traffic then uses the local heuristic.
func NewRouter(cache *Cache, vendor TextDetector, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cache:      cache,
		classifier: NewClassifier(),
		vendor:     vendor,
		logger:     logger,
	}
}

// Detect runs detection for text under the given tier's strategy.
//
// All tiers hit the cache first. Free tier uses the heuristic only. Paid
// tiers prefer the vendor API, except for short texts where the heuristic is
// accurate enough to not be worth a vendor call. A retryable vendor failure
// degrades to the heuristic; a non-retryable one (bad API key) is returned
// as an error so misconfiguration is never papered over with a silent
// low-quality answer.
func (r *Router) Detect(ctx context.Context, text string, lang language.Info, tier string) (Result, error) {
	key := Key(text)
	if cached, ok := r.cache.Get(key); ok {
		cached.Method = MethodCache
		return cached, nil
	}

	if r.useVendor(text, tier) {
		result, err := r.detectViaVendor(ctx, text, lang)
		if err == nil {
			r.cache.Put(key, result)
			return result, nil
		}

		apiErr := apiclient.Classify(err)
		if !apiErr.Retryable {
			return Result{}, apiErr
		}
		r.logger.Warn("vendor detection failed, using heuristic",
			"code", apiErr.Code,
			"error", apiErr.Message,
		)
	}

	result := r.classifier.Classify(text, lang)
	r.cache.Put(key, result)
	return result, nil
}

// useVendor decides whether the vendor API should serve this request.
func (r *Router) useVendor(text string, tier string) bool {
	if r.vendor == nil || !r.vendor.IsConfigured() {
		return false
	}
	limits := constants.GetTierLimits(tier)
	if !limits.LiveDetection {
		return false
	}
	if tier == constants.TierYearly && len(text) < shortTextThreshold {
		return false
	}
	return true
}

func (r *Router) detectViaVendor(ctx context.Context, text string, lang language.Info) (Result, error) {
	resp, err := r.vendor.DetectText(ctx, text)
	if err != nil {
		return Result{}, err
	}
	if len(resp.Documents) == 0 {
		return Result{}, errors.New("vendor returned no documents")
	}

	doc := resp.Documents[0]
	prob := doc.CompletelyGeneratedProb
	return Result{
		LikelyAI:   prob > 0.5,
		Confidence: prob,
		Method:     MethodAPI,
		Language:   lang,
		Details: Details{
			API: &APIDetails{
				Vendor:          "GPTZero",
				RawScore:        prob,
				DocumentClasses: doc.PredictedClass,
			},
		},
	}, nil
}
