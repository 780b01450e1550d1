package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"user-server/internal/models"
)

func pathRoleID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, models.NewValidationError("Invalid role id")
	}
	return id, nil
}

// CreateRole registers a role from the closed enumeration.
func (h *Handler) CreateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("role_name is required"))
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), req.RoleName)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Status:  true,
		Message: "Role created",
		Data:    role,
	})
}

// ListRoles returns all roles.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Roles retrieved",
		Data:    roles,
	})
}

// GetRole returns one role by id.
func (h *Handler) GetRole(c *gin.Context) {
	id, err := pathRoleID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Role retrieved",
		Data:    role,
	})
}

// UpdateRole renames a role within the closed enumeration.
func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := pathRoleID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("role_name is required"))
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, req.RoleName)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Role updated",
		Data:    role,
	})
}

// DeleteRole removes a role. Users referencing it fall back to the default
// role through the ON DELETE SET NULL foreign key.
func (h *Handler) DeleteRole(c *gin.Context) {
	id, err := pathRoleID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Role deleted",
	})
}
