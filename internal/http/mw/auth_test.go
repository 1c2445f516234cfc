package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stopfakeai/detection-api/internal/auth"
)

const testSecret = "test-secret-at-least-32-characters-long"

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(testSecret, time.Hour)
}

func issueToken(t *testing.T, tier string) string {
	t.Helper()
	token, err := testTokens().Generate("user-1", "user@example.com", tier)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return token
}

// claimsRecorder captures the claims the middleware put in context.
func claimsRecorder(got **UserClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetUserClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

// ========================================
// Auth Tests
// ========================================

func TestAuth_ValidToken(t *testing.T) {
	var got *UserClaims
	handler := Auth(testTokens())(claimsRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "pro"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil {
		t.Fatal("claims not set in context")
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", got.UserID, "user-1")
	}
	if got.Tier != "pro" {
		t.Errorf("Tier = %q, want %q", got.Tier, "pro")
	}
}

func TestAuth_BareToken(t *testing.T) {
	// A token without the Bearer prefix is accepted.
	var got *UserClaims
	handler := Auth(testTokens())(claimsRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", issueToken(t, "free"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := Auth(testTokens())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := Auth(testTokens())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	other := auth.NewTokenManager("another-secret-that-is-32-chars-long!", time.Hour)
	token, err := other.Generate("user-1", "user@example.com", "free")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	handler := Auth(testTokens())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// ========================================
// OptionalAuth Tests
// ========================================

func TestOptionalAuth_NoHeader(t *testing.T) {
	var got *UserClaims
	handler := OptionalAuth(testTokens())(claimsRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/plans", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != nil {
		t.Errorf("claims = %+v, want nil", got)
	}
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	var got *UserClaims
	handler := OptionalAuth(testTokens())(claimsRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/plans", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "yearly"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got == nil || got.Tier != "yearly" {
		t.Errorf("claims = %+v, want yearly tier", got)
	}
}

func TestOptionalAuth_InvalidTokenContinues(t *testing.T) {
	var got *UserClaims
	handler := OptionalAuth(testTokens())(claimsRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/plans", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != nil {
		t.Errorf("claims = %+v, want nil for invalid token", got)
	}
}

// ========================================
// GetUserClaims Tests
// ========================================

func TestGetUserClaims_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims := GetUserClaims(req.Context()); claims != nil {
		t.Errorf("GetUserClaims() = %+v, want nil", claims)
	}
}
