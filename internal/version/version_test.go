package version

import (
	"runtime"
	"strings"
	"testing"
)

// ========================================
// Get() Tests
// ========================================

func TestGet_PopulatesRuntimeFields(t *testing.T) {
	info := Get()

	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	wantPlatform := runtime.GOOS + "/" + runtime.GOARCH
	if info.Platform != wantPlatform {
		t.Errorf("Platform = %q, want %q", info.Platform, wantPlatform)
	}
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
}

func TestGet_DirtyStringConversion(t *testing.T) {
	info := Get()

	want := Dirty == "true"
	if info.Dirty != want {
		t.Errorf("Dirty = %v, want %v (package Dirty=%q)", info.Dirty, want, Dirty)
	}
}

// ========================================
// String() and Short() Tests
// ========================================

func TestInfo_String(t *testing.T) {
	info := Info{
		Version: "2.1.0",
		Commit:  "deadbeef",
		Date:    "2025-06-01",
	}

	if got := info.String(); got != "2.1.0 (deadbeef) built 2025-06-01" {
		t.Errorf("String() = %q, want %q", got, "2.1.0 (deadbeef) built 2025-06-01")
	}

	info.Dirty = true
	if got := info.String(); !strings.Contains(got, "deadbeef-dirty") {
		t.Errorf("String() = %q, should contain %q", got, "deadbeef-dirty")
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{"clean", Info{Version: "1.2.3"}, "1.2.3"},
		{"dirty", Info{Version: "1.2.3", Dirty: true}, "1.2.3-dirty"},
		{"dev default", Info{Version: "0.0.0-dev"}, "0.0.0-dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.expected {
				t.Errorf("Short() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// ========================================
// Package Variable Defaults
// ========================================

func TestPackageDefaults(t *testing.T) {
	if Version == "" || Commit == "" || Date == "" {
		t.Error("build variables should have non-empty defaults")
	}
	if Dirty != "false" && Dirty != "true" {
		t.Errorf("Dirty = %q, want 'false' or 'true'", Dirty)
	}
}
