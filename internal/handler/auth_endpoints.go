package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// Login issues an access/refresh token pair for valid credentials.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("email and password are required"))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	loginsTotal.Inc()
	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Login successful",
		Data:    loginResponse{Tokens: result.Tokens, User: result.User},
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("refresh_token is required"))
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	refreshesTotal.Inc()
	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Token refreshed",
		Data:    tokens,
	})
}

// Logout revokes the bearer token. It deliberately skips RequireAuth so an
// already expired or revoked token still yields an idempotent success.
func (h *Handler) Logout(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), tokenString); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Logged out",
	})
}

// ForgotPassword starts the reset flow by emailing a reset link.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("email is required"))
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Password reset email queued")
	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Password reset email sent",
	})
}

// ResetPassword completes the reset flow with the emailed token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("token and new_password are required"))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}

	passwordResetsTotal.Inc()
	h.logger.Info("Password reset completed", zap.String("clientIP", c.ClientIP()))
	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Password has been reset",
	})
}
