package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-server/internal/config"
	"user-server/internal/models"
	"user-server/internal/service"
	"user-server/internal/token"
)

// Handler wires the HTTP surface to the service layer. One instance serves
// all route groups.
type Handler struct {
	authService service.AuthService
	userService service.UserService
	roleService service.RoleService
	maintenance service.MaintenanceService
	fileService service.FileService
	verifier    *token.Verifier
	limiters    map[string]gin.HandlerFunc
	logger      *zap.Logger
}

// NewHandler builds the Handler and one rate-limit middleware per named
// route from the config table.
func NewHandler(
	authService service.AuthService,
	userService service.UserService,
	roleService service.RoleService,
	maintenance service.MaintenanceService,
	fileService service.FileService,
	verifier *token.Verifier,
	routeLimits map[string]config.RouteLimit,
	limiterFactory LimiterFactory,
	logger *zap.Logger,
) *Handler {
	limiters := make(map[string]gin.HandlerFunc, len(routeLimits))
	for route, limit := range routeLimits {
		limiters[route] = limiterFactory(route, limit)
	}
	return &Handler{
		authService: authService,
		userService: userService,
		roleService: roleService,
		maintenance: maintenance,
		fileService: fileService,
		verifier:    verifier,
		limiters:    limiters,
		logger:      logger.Named("Handler"),
	}
}

// limiter returns the configured middleware for a named route. Routes
// without an entry pass through unlimited.
func (h *Handler) limiter(route string) gin.HandlerFunc {
	if mw, ok := h.limiters[route]; ok {
		return mw
	}
	h.logger.Warn("No rate limit configured for route", zap.String("route", route))
	return func(c *gin.Context) { c.Next() }
}

// RegisterRoutes attaches all endpoints to the router. Protected routes run
// auth, then role check, then the rate limiter, so the limiter can key on
// the authenticated user.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	auth := RequireAuth(h.verifier)
	adminOnly := RequireRoles(models.RoleAdmin)

	users := router.Group("/users")
	{
		// Session endpoints. Logout stays outside RequireAuth so revoking
		// an expired token is still an idempotent success.
		users.POST("/login", h.limiter("login"), h.Login)
		users.POST("/refresh", h.limiter("refresh"), h.Refresh)
		users.POST("/logout", h.limiter("logout"), h.Logout)
		users.POST("/forgot-password", h.limiter("forgot-password"), h.ForgotPassword)
		users.POST("/reset-password", h.limiter("reset-password"), h.ResetPassword)

		// Account management.
		users.POST("", auth, adminOnly, h.limiter("user-create"), h.CreateUser)
		users.GET("", auth, adminOnly, h.limiter("user-list"), h.ListUsers)
		users.GET("/:id", auth, h.limiter("user-get"), h.GetUser)
		users.PUT("/:id", auth, h.limiter("user-update"), h.UpdateUser)
		users.DELETE("/:id", auth, adminOnly, h.limiter("user-delete"), h.DeleteUser)
	}

	roles := router.Group("/roles")
	{
		roles.POST("", h.CreateRole)
		roles.GET("", auth, adminOnly, h.ListRoles)
		roles.GET("/:id", auth, adminOnly, h.GetRole)
		roles.PUT("/:id", auth, adminOnly, h.UpdateRole)
		roles.DELETE("/:id", auth, adminOnly, h.DeleteRole)
	}

	files := router.Group("/files", auth)
	{
		files.POST("/upload", h.limiter("file-upload"), h.UploadFile)
	}

	manual := router.Group("/manual", auth, adminOnly)
	{
		manual.POST("/deactivate", h.TriggerDeactivation)
		manual.POST("/reports", h.TriggerReports)
		manual.POST("/backup", h.TriggerBackup)
	}
}
