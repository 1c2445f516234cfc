package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stopfakeai/detection-api/internal/auth"
	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/models"
	"github.com/stopfakeai/detection-api/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles signup, login, and session issuance.
type AuthService struct {
	repos  *repository.Repositories
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(repos *repository.Repositories, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		repos:  repos,
		tokens: tokens,
		logger: logger,
	}
}

// Session is the result of a successful signup or login.
type Session struct {
	User  *models.User
	Token string
}

// Signup registers a new free-tier account and returns a session.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	existing, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:               ulid.Make().String(),
		Email:            email,
		PasswordHash:     hash,
		SubscriptionTier: constants.TierFree,
		DailyChecks:      0,
		LastCheckReset:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// Login authenticates an existing account and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		// Same error for unknown email and bad password.
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail does a cheap structural check only.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t\n")
}
