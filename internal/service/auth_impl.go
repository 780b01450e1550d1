package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-server/internal/messaging"
	"user-server/internal/models"
	"user-server/internal/repository"
	"user-server/internal/token"
	"user-server/internal/validation"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

// authServiceImpl implements the AuthService interface.
type authServiceImpl struct {
	userRepo      repository.UserRepository
	codec         *token.Codec
	verifier      *token.Verifier
	resetLedger   token.ResetLedger
	publisher     messaging.EmailPublisher
	ledgerTTL     time.Duration
	resetLinkBase string
	logger        *zap.Logger
}

// NewAuthService creates a new authServiceImpl.
func NewAuthService(
	userRepo repository.UserRepository,
	codec *token.Codec,
	verifier *token.Verifier,
	resetLedger token.ResetLedger,
	publisher messaging.EmailPublisher,
	ledgerTTL time.Duration,
	resetLinkBase string,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:      userRepo,
		codec:         codec,
		verifier:      verifier,
		resetLedger:   resetLedger,
		publisher:     publisher,
		ledgerTTL:     ledgerTTL,
		resetLinkBase: resetLinkBase,
		logger:        logger.Named("AuthService"),
	}
}

// Login authenticates a user by email and password.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// One generic error for both unknown email and wrong password,
			// so the response does not leak which emails exist.
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		s.logger.Warn("Login failed: invalid password", zap.String("email", email), zap.String("userID", user.ID.String()))
		return nil, models.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Credentials were right, but the login is not recorded; failing
		// here keeps the audit trail authoritative.
		s.logger.Error("Failed to update last login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, models.ErrInternalServer
	}
	user.LastLogin = &now

	if user.RoleName == "" {
		user.RoleName = models.DefaultRoleName
	}

	td, err := s.createTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to create tokens during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return &LoginResult{Tokens: td, User: user}, nil
}

// Refresh exchanges a refresh token for a new token pair. Identity is
// re-derived from storage, so role changes take effect on the next refresh.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error) {
	s.logger.Info("Token refresh attempt")

	claims, err := s.verifier.Verify(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("Refresh attempt with invalid token", zap.Error(err))
		return nil, err
	}

	if claims.Kind != models.TokenKindRefresh {
		s.logger.Warn("Refresh attempt with non-refresh token", zap.String("kind", claims.Kind))
		return nil, models.ErrWrongTokenType
	}

	userID, err := token.Subject(claims)
	if err != nil {
		s.logger.Error("Refresh token carries unparseable subject", zap.String("subject", claims.Subject))
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Refresh attempt for deleted user", zap.String("userID", userID.String()))
			return nil, models.ErrUserNotFound
		}
		s.logger.Error("Failed to fetch user during refresh", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to fetch user during refresh: %w", err)
	}

	if user.RoleName == "" {
		user.RoleName = models.DefaultRoleName
	}

	td, err := s.createTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to create tokens during refresh", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to create new tokens during refresh: %w", err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("userID", user.ID.String()))
	return td, nil
}

// Logout revokes the bearer token. Expired or already revoked tokens are a
// successful no-op, so repeated logouts never error.
func (s *authServiceImpl) Logout(ctx context.Context, bearerToken string) error {
	s.logger.Info("Logout attempt")

	if err := s.verifier.Revoke(ctx, bearerToken); err != nil {
		s.logger.Error("Failed to revoke token during logout", zap.Error(err))
		return models.ErrInternalServer
	}

	s.logger.Info("User logged out successfully")
	return nil
}

// ForgotPassword issues a reset token and enqueues the reset email.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	s.logger.Info("Forgot password request", zap.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Forgot password for unknown email", zap.String("email", email))
			return models.ErrUserNotFound
		}
		s.logger.Error("Failed to fetch user for forgot password", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	resetToken, _, err := s.codec.IssueReset(user.ID)
	if err != nil {
		s.logger.Error("Failed to issue reset token", zap.Error(err), zap.String("userID", user.ID.String()))
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	// The ledger entry outlives the token itself; both checks must pass
	// when the token comes back.
	ledgerExpiry := time.Now().Add(s.ledgerTTL)
	if err := s.resetLedger.Issue(ctx, resetToken, user.ID, ledgerExpiry); err != nil {
		s.logger.Error("Failed to record reset token in ledger", zap.Error(err), zap.String("userID", user.ID.String()))
		return models.ErrInternalServer
	}

	msg := messaging.EmailMessage{
		To:      user.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password. "+
			"It expires in %d minutes.\n\n%s?token=%s\n\nIf you did not request this, ignore this email.",
			user.FullName(), int(s.codec.ResetTTL().Minutes()), s.resetLinkBase, resetToken),
	}
	if err := s.publisher.PublishEmail(ctx, msg); err != nil {
		// The ledger entry is already committed; the token stays usable
		// even though the email never left.
		s.logger.Error("Failed to publish reset email", zap.Error(err), zap.String("userID", user.ID.String()))
		return models.ErrInternalServer
	}

	s.logger.Info("Reset token issued and email enqueued", zap.String("userID", user.ID.String()))
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *authServiceImpl) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	s.logger.Info("Password reset attempt")

	claims, err := s.codec.Decode(resetToken)
	if err != nil {
		s.logger.Warn("Password reset with invalid token", zap.Error(err))
		return err
	}
	if claims.Kind != models.TokenKindReset {
		s.logger.Warn("Password reset with non-reset token", zap.String("kind", claims.Kind))
		return models.ErrWrongTokenType
	}

	userID, err := s.resetLedger.Consume(ctx, resetToken)
	if err != nil {
		s.logger.Warn("Password reset ledger rejection", zap.Error(err))
		return err
	}

	if err := validation.Password(newPassword); err != nil {
		// The ledger entry is already consumed; a policy failure costs the
		// user another forgot-password round trip, same as the reference.
		s.logger.Warn("Password reset with weak password", zap.String("userID", userID.String()))
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash new password", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, passwordHash); err != nil {
		s.logger.Error("Failed to persist new password hash", zap.Error(err), zap.String("userID", userID.String()))
		return err
	}

	s.logger.Info("Password reset successfully", zap.String("userID", userID.String()))
	return nil
}

// createTokenPair issues a fresh access and refresh token for the user.
func (s *authServiceImpl) createTokenPair(user *models.User) (*models.TokenDetails, error) {
	accessToken, atExpires, err := s.codec.IssueAccess(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, rtExpires, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &models.TokenDetails{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AtExpires:    atExpires,
		RtExpires:    rtExpires,
	}, nil
}
