package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stopfakeai/detection-api/internal/constants"
)

// ========================================
// Daily Quota Tests
// ========================================

func TestConsumeCheck_FreeTierQuota(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 0, testLogger())
	ctx := context.Background()

	user := createUser(t, repos, "free@example.com", constants.TierFree)
	limit := constants.GetTierLimits(constants.TierFree).DailyChecks

	for i := 0; i < limit; i++ {
		status, err := svc.ConsumeCheck(ctx, user.ID)
		if err != nil {
			t.Fatalf("ConsumeCheck() error = %v", err)
		}
		if !status.Allowed {
			t.Fatalf("check %d: Allowed = false, want true", i+1)
		}
		if status.Remaining != limit-i-1 {
			t.Errorf("check %d: Remaining = %d, want %d", i+1, status.Remaining, limit-i-1)
		}
	}

	status, err := svc.ConsumeCheck(ctx, user.ID)
	if err != nil {
		t.Fatalf("ConsumeCheck() error = %v", err)
	}
	if status.Allowed {
		t.Error("Allowed = true after quota exhausted, want false")
	}
	if status.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", status.Remaining)
	}
	if status.Limit != limit {
		t.Errorf("Limit = %d, want %d", status.Limit, limit)
	}
}

func TestConsumeCheck_PaidTierUnlimited(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 0, testLogger())
	ctx := context.Background()

	user := createUser(t, repos, "pro@example.com", constants.TierPro)

	for i := 0; i < 10; i++ {
		status, err := svc.ConsumeCheck(ctx, user.ID)
		if err != nil {
			t.Fatalf("ConsumeCheck() error = %v", err)
		}
		if !status.Allowed {
			t.Fatalf("check %d: Allowed = false for paid tier, want true", i+1)
		}
	}

	status, err := svc.CanCheck(ctx, user.ID)
	if err != nil {
		t.Fatalf("CanCheck() error = %v", err)
	}
	if !status.Allowed {
		t.Error("Allowed = false for paid tier, want true")
	}
	if status.Remaining != -1 {
		t.Errorf("Remaining = %d, want -1", status.Remaining)
	}
	if !status.ResetAt.IsZero() {
		t.Errorf("ResetAt = %v, want zero for unlimited tier", status.ResetAt)
	}
}

func TestConsumeCheck_FreeDailyChecksOverride(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 5, testLogger())
	ctx := context.Background()

	user := createUser(t, repos, "override@example.com", constants.TierFree)

	for i := 0; i < 5; i++ {
		status, err := svc.ConsumeCheck(ctx, user.ID)
		if err != nil {
			t.Fatalf("ConsumeCheck() error = %v", err)
		}
		if !status.Allowed {
			t.Fatalf("check %d: Allowed = false, want true with override 5", i+1)
		}
		if status.Limit != 5 {
			t.Errorf("check %d: Limit = %d, want 5", i+1, status.Limit)
		}
	}

	status, err := svc.ConsumeCheck(ctx, user.ID)
	if err != nil {
		t.Fatalf("ConsumeCheck() error = %v", err)
	}
	if status.Allowed {
		t.Error("Allowed = true after 5 checks, want false")
	}

	// The override never caps unlimited tiers.
	pro := createUser(t, repos, "override-pro@example.com", constants.TierPro)
	proStatus, err := svc.ConsumeCheck(ctx, pro.ID)
	if err != nil {
		t.Fatalf("ConsumeCheck() error = %v", err)
	}
	if proStatus.Remaining != -1 {
		t.Errorf("pro Remaining = %d, want -1", proStatus.Remaining)
	}
}

func TestCanCheck_DoesNotCharge(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 0, testLogger())
	ctx := context.Background()

	user := createUser(t, repos, "readonly@example.com", constants.TierFree)
	limit := constants.GetTierLimits(constants.TierFree).DailyChecks

	for i := 0; i < limit+2; i++ {
		status, err := svc.CanCheck(ctx, user.ID)
		if err != nil {
			t.Fatalf("CanCheck() error = %v", err)
		}
		if !status.Allowed {
			t.Fatalf("call %d: Allowed = false, want true", i+1)
		}
		if status.Remaining != limit {
			t.Errorf("call %d: Remaining = %d, want %d", i+1, status.Remaining, limit)
		}
	}
}

func TestCanCheck_ResetAtIsNextUTCMidnight(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 0, testLogger())
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 22, 30, 0, 0, time.UTC)
	}

	user := createUser(t, repos, "midnight@example.com", constants.TierFree)

	status, err := svc.CanCheck(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CanCheck() error = %v", err)
	}
	want := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if !status.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", status.ResetAt, want)
	}
}

func TestConsumeCheck_NewDayResetsQuota(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 0, testLogger())
	ctx := context.Background()

	user := createUser(t, repos, "reset@example.com", constants.TierFree)
	limit := constants.GetTierLimits(constants.TierFree).DailyChecks

	day1 := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }

	for i := 0; i < limit; i++ {
		status, err := svc.ConsumeCheck(ctx, user.ID)
		if err != nil {
			t.Fatalf("ConsumeCheck() error = %v", err)
		}
		if !status.Allowed {
			t.Fatalf("check %d: Allowed = false, want true", i+1)
		}
	}

	status, err := svc.ConsumeCheck(ctx, user.ID)
	if err != nil {
		t.Fatalf("ConsumeCheck() error = %v", err)
	}
	if status.Allowed {
		t.Fatal("Allowed = true after quota exhausted, want false")
	}

	// The next UTC day starts a fresh allowance.
	svc.now = func() time.Time { return day1.Add(24 * time.Hour) }

	status, err = svc.ConsumeCheck(ctx, user.ID)
	if err != nil {
		t.Fatalf("ConsumeCheck() error = %v", err)
	}
	if !status.Allowed {
		t.Error("Allowed = false on new day, want true")
	}
	if status.Remaining != limit-1 {
		t.Errorf("Remaining = %d, want %d", status.Remaining, limit-1)
	}
}

func TestCanCheck_UnknownUser(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewUsageService(repos, 0, testLogger())

	_, err := svc.CanCheck(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("CanCheck() error = %v, want ErrUserNotFound", err)
	}

	_, err = svc.ConsumeCheck(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ConsumeCheck() error = %v, want ErrUserNotFound", err)
	}
}
