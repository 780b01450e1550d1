package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// handleServiceError maps service errors onto HTTP responses. Raw internal
// errors never reach the client.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		statusCode = http.StatusBadRequest
		message = vErr.Message
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Login required"
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = "Token has expired"
	case errors.Is(err, models.ErrTokenRevoked):
		statusCode = http.StatusUnauthorized
		message = "Token invalidated"
	case errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		message = "Token is malformed"
	case errors.Is(err, models.ErrWrongTokenType):
		statusCode = http.StatusUnauthorized
		message = "Wrong token type"
	case errors.Is(err, models.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		message = "Token is invalid"
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Access forbidden"
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, models.ErrRoleNotFound):
		statusCode = http.StatusNotFound
		message = "Role not found"
	case errors.Is(err, models.ErrTokenNotFound):
		statusCode = http.StatusBadRequest
		message = "Invalid or already used reset token"
	case errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusBadRequest
		message = "User with this email already exists"
	case errors.Is(err, models.ErrRoleAlreadyExists):
		statusCode = http.StatusBadRequest
		message = "Role already exists"
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}
