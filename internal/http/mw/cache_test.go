package mw

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stopfakeai/detection-api/internal/constants"
)

func cacheServe(t *testing.T, cfg CacheConfig, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	handler := Cache(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// ========================================
// DefaultCacheConfig Tests
// ========================================

func TestDefaultCacheConfig(t *testing.T) {
	cfg := DefaultCacheConfig()

	if cfg.DefaultPolicy != "private, no-cache" {
		t.Errorf("DefaultPolicy = %q, want %q", cfg.DefaultPolicy, "private, no-cache")
	}

	shortSecs := int(constants.CacheMaxAgeShort.Seconds())
	mediumSecs := int(constants.CacheMaxAgeMedium.Seconds())

	expected := map[string]string{
		"/api/v1/health":        fmt.Sprintf("public, max-age=%d", shortSecs),
		"/api/v1/pricing/plans": fmt.Sprintf("public, max-age=%d, stale-while-revalidate=60", mediumSecs),
		"/healthz":              "no-store",
		"/readyz":               "no-store",
		"/api/v1/usage":         "private, no-cache",
	}
	for pattern, want := range expected {
		found := false
		for _, policy := range cfg.Policies {
			if policy.Pattern == pattern {
				found = true
				if policy.CacheControl != want {
					t.Errorf("policy %q: CacheControl = %q, want %q", pattern, policy.CacheControl, want)
				}
			}
		}
		if !found {
			t.Errorf("no policy for %q", pattern)
		}
	}
}

// ========================================
// Cache Middleware Tests
// ========================================

func TestCache_MatchesPolicy(t *testing.T) {
	cfg := DefaultCacheConfig()

	rec := cacheServe(t, cfg, http.MethodGet, "/healthz")
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-store")
	}
}

func TestCache_DefaultPolicy(t *testing.T) {
	cfg := DefaultCacheConfig()

	rec := cacheServe(t, cfg, http.MethodGet, "/api/v1/unmatched")
	if got := rec.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Errorf("Cache-Control = %q, want %q", got, "private, no-cache")
	}
}

func TestCache_MutationsNeverCached(t *testing.T) {
	cfg := DefaultCacheConfig()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := cacheServe(t, cfg, method, "/api/v1/health")
		if got := rec.Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("%s: Cache-Control = %q, want %q", method, got, "no-store")
		}
	}
}

func TestCache_PrefixMatch(t *testing.T) {
	cfg := CacheConfig{
		Policies: []CachePolicy{{Pattern: "/api/v1/languages", CacheControl: "public, max-age=3600"}},
	}

	rec := cacheServe(t, cfg, http.MethodGet, "/api/v1/languages/en")
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q, want %q", got, "public, max-age=3600")
	}
}

func TestCache_NoDefaultLeavesHeaderUnset(t *testing.T) {
	cfg := CacheConfig{}

	rec := cacheServe(t, cfg, http.MethodGet, "/anything")
	if got := rec.Header().Get("Cache-Control"); got != "" {
		t.Errorf("Cache-Control = %q, want empty", got)
	}
}
