package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stopfakeai/detection-api/internal/auth"
	"github.com/stopfakeai/detection-api/internal/models"
	"github.com/stopfakeai/detection-api/internal/service"
)

// AuthHandler handles signup, login, logout, and the current-user endpoint.
type AuthHandler struct {
	authSvc  *service.AuthService
	usageSvc *service.UsageService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authSvc *service.AuthService, usageSvc *service.UsageService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, usageSvc: usageSvc}
}

// UserResponse is the client-safe representation of a user.
type UserResponse struct {
	ID              string    `json:"id" doc:"User ID"`
	Email           string    `json:"email" doc:"Email address"`
	Tier            string    `json:"tier" doc:"Subscription tier"`
	DailyChecks     int       `json:"daily_checks" doc:"Detections used today"`
	RemainingChecks int       `json:"remaining_checks" doc:"Detections left today (-1 = unlimited)"`
	CreatedAt       time.Time `json:"created_at" doc:"Account creation time"`
}

func buildUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Tier:            user.SubscriptionTier,
		DailyChecks:     user.DailyChecks,
		RemainingChecks: user.RemainingChecks(),
		CreatedAt:       user.CreatedAt,
	}
}

// SignupInput is the signup request.
type SignupInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Email address"`
		Password string `json:"password" minLength:"8" doc:"Password (min 8 characters)"`
	}
}

// SessionOutput is returned by signup and login.
type SessionOutput struct {
	Body struct {
		User  UserResponse `json:"user"`
		Token string       `json:"token" doc:"Bearer token for the Authorization header"`
	}
}

// Signup registers a new account on the free tier.
func (h *AuthHandler) Signup(ctx context.Context, input *SignupInput) (*SessionOutput, error) {
	sess, err := h.authSvc.Signup(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return nil, huma.Error409Conflict(err.Error())
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, auth.ErrPasswordTooShort):
			return nil, huma.Error400BadRequest(err.Error())
		default:
			return nil, huma.Error500InternalServerError("failed to create account")
		}
	}

	out := &SessionOutput{}
	out.Body.User = buildUserResponse(sess.User)
	out.Body.Token = sess.Token
	return out, nil
}

// LoginInput is the login request.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" doc:"Email address"`
		Password string `json:"password" doc:"Password"`
	}
}

// Login authenticates an existing account.
func (h *AuthHandler) Login(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	sess, err := h.authSvc.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return nil, huma.Error401Unauthorized(err.Error())
		}
		return nil, huma.Error500InternalServerError("failed to log in")
	}

	out := &SessionOutput{}
	out.Body.User = buildUserResponse(sess.User)
	out.Body.Token = sess.Token
	return out, nil
}

// LogoutOutput is the logout response.
type LogoutOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Logout acknowledges a logout. Tokens are stateless, so the client
// discards its copy; the endpoint exists so clients have a uniform
// session lifecycle to call.
func (h *AuthHandler) Logout(ctx context.Context, _ *struct{}) (*LogoutOutput, error) {
	if getUserID(ctx) == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	out := &LogoutOutput{}
	out.Body.Status = "logged_out"
	return out, nil
}

// MeOutput is the current-user response.
type MeOutput struct {
	Body UserResponse
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	user, err := h.authSvc.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, huma.Error404NotFound("user not found")
		}
		return nil, huma.Error500InternalServerError("failed to load user")
	}

	return &MeOutput{Body: buildUserResponse(user)}, nil
}
