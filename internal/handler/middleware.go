package handler

import (
	"net/http"
	"strings"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-server/internal/config"
	"user-server/internal/models"
	"user-server/internal/token"
)

// Gin context keys set by RequireAuth.
const (
	ctxIdentityKey = "identity"
	ctxBearerKey   = "bearer_token"
)

// identityFromContext returns the authenticated identity stored by RequireAuth.
func identityFromContext(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(ctxIdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}

// bearerToken extracts the raw token from an "Authorization: Bearer X" header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth verifies the bearer access token and stores the caller's
// identity in the gin context. Refresh and reset tokens are rejected even
// though they carry valid signatures.
func RequireAuth(verifier *token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			zap.L().Warn("Authorization header missing or malformed")
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, models.ErrUnauthorized)
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, err)
			return
		}

		if claims.Kind != models.TokenKindAccess || claims.Identity == nil {
			zap.L().Warn("Non-access token presented on protected route", zap.String("kind", claims.Kind))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, models.ErrWrongTokenType)
			return
		}

		tokenVerificationsTotal.WithLabelValues("success").Inc()
		c.Set(ctxIdentityKey, *claims.Identity)
		c.Set(ctxBearerKey, tokenString)
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated
// identity carries one of the given role names. Must run after RequireAuth.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok {
			handleServiceError(c, models.ErrUnauthorized)
			return
		}
		if !models.RoleAllowed(identity.RoleName, allowed...) {
			zap.L().Warn("Role check failed",
				zap.String("userID", identity.UserID.String()),
				zap.String("role", identity.RoleName),
				zap.Strings("allowed", allowed),
			)
			handleServiceError(c, models.ErrForbidden)
			return
		}
		c.Next()
	}
}

// LimiterFactory builds a rate-limiting middleware for one named route.
// The factory decides where counters live; tests use the in-memory one.
type LimiterFactory func(route string, limit config.RouteLimit) gin.HandlerFunc

// rateLimitKey buckets authenticated requests per user and anonymous
// requests per client IP.
func rateLimitKey(c *gin.Context) string {
	if identity, ok := identityFromContext(c); ok {
		return identity.UserID.String()
	}
	return c.ClientIP()
}

func rateLimitErrorHandler(route string) func(c *gin.Context, info rateli.Info) {
	return func(c *gin.Context, info rateli.Info) {
		rateLimitRejectionsTotal.WithLabelValues(route).Inc()
		zap.L().Warn("Rate limit exceeded",
			zap.String("route", route),
			zap.String("clientIP", c.ClientIP()),
			zap.Time("resetTime", info.ResetTime),
		)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.APIResponse{
			Status:  false,
			Message: "Rate limit exceeded: try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
		})
	}
}

// NewRedisLimiterFactory returns a LimiterFactory whose counters are shared
// between instances through Redis.
func NewRedisLimiterFactory(client *redis.Client) LimiterFactory {
	return func(route string, limit config.RouteLimit) gin.HandlerFunc {
		store := rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: client,
			Rate:        limit.Window,
			Limit:       limit.Limit,
		})
		return rateli.RateLimiter(store, &rateli.Options{
			ErrorHandler: rateLimitErrorHandler(route),
			KeyFunc:      rateLimitKey,
		})
	}
}

// NewMemoryLimiterFactory returns a LimiterFactory with process-local
// counters. Suitable for single-instance deployments and tests.
func NewMemoryLimiterFactory() LimiterFactory {
	return func(route string, limit config.RouteLimit) gin.HandlerFunc {
		store := rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  limit.Window,
			Limit: limit.Limit,
		})
		return rateli.RateLimiter(store, &rateli.Options{
			ErrorHandler: rateLimitErrorHandler(route),
			KeyFunc:      rateLimitKey,
		})
	}
}
