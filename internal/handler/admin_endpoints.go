package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// Manual triggers for the background maintenance jobs. All of these sit
// behind RequireAuth + RequireRoles(admin) on the /manual group.

// TriggerDeactivation runs the inactive-account sweep immediately.
func (h *Handler) TriggerDeactivation(c *gin.Context) {
	count, err := h.maintenance.DeactivateInactiveUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Manual deactivation run finished", zap.Int("deactivated", count))
	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Deactivation job finished",
		Data:    gin.H{"deactivated": count},
	})
}

// TriggerReports emails the user status report to all admins immediately.
func (h *Handler) TriggerReports(c *gin.Context) {
	if err := h.maintenance.SendUserReports(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Report job finished",
	})
}

// TriggerBackup writes a CSV snapshot of the users table immediately.
func (h *Handler) TriggerBackup(c *gin.Context) {
	path, err := h.maintenance.BackupUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Manual backup run finished", zap.String("path", path))
	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Backup job finished",
		Data:    gin.H{"path": path},
	})
}
