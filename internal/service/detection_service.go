package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stopfakeai/detection-api/internal/config"
	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/detection"
	"github.com/stopfakeai/detection-api/internal/language"
	"github.com/stopfakeai/detection-api/internal/ratelimit"
)

var ErrEmptyText = errors.New("text is required")

// TextTooShortError reports text under the per-language minimum.
type TextTooShortError struct {
	MinLength int
	Language  string
}

func (e *TextTooShortError) Error() string {
	return fmt.Sprintf("text must be at least %d characters for %s detection", e.MinLength, e.Language)
}

// RateLimitError reports a per-user detection rate limit hit.
type RateLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d requests per minute exceeded", e.Limit)
}

// DetectionService runs text detection: per-user rate limiting, language
// validation, then the tiered cache/heuristic/vendor router.
type DetectionService struct {
	cfg     *config.Config
	router  *detection.Router
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewDetectionService creates a new detection service. vendor may be nil.
func NewDetectionService(cfg *config.Config, cache *detection.Cache, vendor detection.TextDetector, logger *slog.Logger) *DetectionService {
	return &DetectionService{
		cfg:     cfg,
		router:  detection.NewRouter(cache, vendor, logger),
		limiter: ratelimit.NewLimiter(),
		logger:  logger,
	}
}

// TextDetection is the full outcome of a text detection request.
type TextDetection struct {
	Result          detection.Result
	WordCount       int
	CostSavedUSD    float64
	LanguageWarning string
	RateRemaining   int
}

// DetectText validates and runs detection for the given user and tier.
func (s *DetectionService) DetectText(ctx context.Context, userID, tier, text string) (*TextDetection, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	maxPerWindow := s.cfg.RateLimitMax
	if maxPerWindow <= 0 {
		maxPerWindow = constants.GetTierLimits(tier).RequestsPerMinute
	}
	rl := s.limiter.Check("text-"+userID, s.cfg.RateLimitWindow, maxPerWindow)
	if !rl.Allowed {
		return nil, &RateLimitError{Limit: maxPerWindow, ResetAt: rl.ResetAt}
	}

	lang := language.Detect(text)
	if minLen := language.MinimumTextLength(lang); len(text) < minLen {
		return nil, &TextTooShortError{MinLength: minLen, Language: lang.Name}
	}

	result, err := s.router.Detect(ctx, text, lang, tier)
	if err != nil {
		return nil, err
	}

	wordCount := len(strings.Fields(text))
	return &TextDetection{
		Result:          result,
		WordCount:       wordCount,
		CostSavedUSD:    costSaved(wordCount, result.Method),
		LanguageWarning: language.AccuracyWarning(lang),
		RateRemaining:   rl.Remaining,
	}, nil
}

// costSaved estimates the vendor spend avoided by serving a result locally
// or from cache.
func costSaved(wordCount int, method detection.Method) float64 {
	if method == detection.MethodAPI || method == detection.MethodMLModel {
		return 0
	}
	return float64(wordCount) * detection.CostPerWordUSD
}
