package service

import (
	"context"

	"user-server/internal/models"
)

// LoginResult bundles the fresh token pair with the sanitized user profile.
type LoginResult struct {
	Tokens *models.TokenDetails
	User   *models.User
}

// AuthService defines the session lifecycle operations.
type AuthService interface {
	// Login authenticates by email and password, records last_login and
	// returns a new token pair with the user profile.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error)
	// Logout revokes the presented bearer token. Idempotent.
	Logout(ctx context.Context, bearerToken string) error
	// ForgotPassword issues a reset token for the account and enqueues the
	// reset email.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword consumes a reset token and sets a new password.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}
