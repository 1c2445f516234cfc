package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stopfakeai/detection-api/internal/auth"
	"github.com/stopfakeai/detection-api/internal/config"
	"github.com/stopfakeai/detection-api/internal/database/migrations"
	"github.com/stopfakeai/detection-api/internal/models"
	"github.com/stopfakeai/detection-api/internal/repository"
	_ "github.com/tursodatabase/go-libsql"
)

const testJWTSecret = "test-secret-at-least-32-characters-long"

// setupTestRepos creates repositories backed by an in-memory database.
func setupTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return repository.NewRepositories(db)
}

// testLogger discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a minimal valid config for service tests.
func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       testJWTSecret,
		JWTExpiry:       time.Hour,
		RateLimitWindow: time.Minute,
		CacheSize:       100,
		CacheTTL:        time.Hour,
		FreeDailyChecks: 3,
	}
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(testJWTSecret, time.Hour)
}

// createUser inserts a user with the given tier and returns it.
func createUser(t *testing.T, repos *repository.Repositories, email, tier string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:               ulid.Make().String(),
		Email:            email,
		PasswordHash:     hash,
		SubscriptionTier: tier,
		LastCheckReset:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
