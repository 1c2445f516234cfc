package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/models"
	"github.com/stopfakeai/detection-api/internal/repository"
)

// UsageService tracks daily detection usage against tier quotas.
type UsageService struct {
	repos *repository.Repositories
	// freeDailyChecks overrides the tier table's limit for limited tiers
	// when > 0 (FREE_DAILY_CHECKS)
	freeDailyChecks int
	logger          *slog.Logger
	now             func() time.Time
}

// NewUsageService creates a new usage service.
func NewUsageService(repos *repository.Repositories, freeDailyChecks int, logger *slog.Logger) *UsageService {
	return &UsageService{
		repos:           repos,
		freeDailyChecks: freeDailyChecks,
		logger:          logger,
		now:             time.Now,
	}
}

// QuotaStatus describes a user's standing against the daily quota.
type QuotaStatus struct {
	Allowed   bool
	Remaining int       // -1 = unlimited
	Limit     int       // 0 = unlimited
	ResetAt   time.Time // next UTC midnight, zero for unlimited tiers
	User      *models.User
}

// dailyLimit returns the user's daily check allowance, 0 for unlimited.
func (s *UsageService) dailyLimit(user *models.User) int {
	limit := constants.GetTierLimits(user.SubscriptionTier).DailyChecks
	if limit > 0 && s.freeDailyChecks > 0 {
		limit = s.freeDailyChecks
	}
	return limit
}

// CanCheck reports whether the user may run another detection today
// without charging one. The daily counter is lazily reset on the first
// call of a new UTC day.
func (s *UsageService) CanCheck(ctx context.Context, userID string) (*QuotaStatus, error) {
	now := s.now()
	user, err := s.repos.User.CheckAndResetDailyChecks(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	limit := s.dailyLimit(user)
	if limit == 0 {
		return &QuotaStatus{Allowed: true, Remaining: -1, User: user}, nil
	}

	remaining := limit - user.DailyChecks
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaStatus{
		Allowed:   remaining > 0,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   nextUTCMidnight(now),
		User:      user,
	}, nil
}

// ConsumeCheck charges one detection against the user's daily quota. The
// limit is enforced inside the repository's conditional update, so two
// in-flight requests can never both spend the last check. Unlimited tiers
// are still counted for usage stats. On denial, Remaining reflects the
// unchanged counter.
func (s *UsageService) ConsumeCheck(ctx context.Context, userID string) (*QuotaStatus, error) {
	now := s.now()

	// The tier read only picks the limit; the limit itself is enforced
	// atomically by the conditional update below.
	current, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrUserNotFound
	}

	user, allowed, err := s.repos.User.ConsumeDailyCheck(ctx, userID, s.dailyLimit(current), now)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	limit := s.dailyLimit(user)
	if limit == 0 {
		return &QuotaStatus{Allowed: true, Remaining: -1, User: user}, nil
	}

	remaining := limit - user.DailyChecks
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaStatus{
		Allowed:   allowed,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   nextUTCMidnight(now),
		User:      user,
	}, nil
}

// nextUTCMidnight returns the start of the next UTC day.
func nextUTCMidnight(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
