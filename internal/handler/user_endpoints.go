package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-server/internal/models"
	"user-server/internal/service"
)

// pathUserID parses the :id path parameter.
func pathUserID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, models.NewValidationError("Invalid user id")
	}
	return id, nil
}

// selfOrAdmin reports whether the actor may touch the given account.
func selfOrAdmin(actor models.Identity, id uuid.UUID) bool {
	return actor.UserID == id || models.IsAdmin(actor.RoleName)
}

// CreateUser registers a new account. Admin only (enforced on the route).
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("first_name, last_name, email and password are required"))
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Salutation:  req.Salutation,
		Gender:      req.Gender,
		DateOfBirth: dob,
		Email:       req.Email,
		Phone:       req.Phone,
		RoleName:    req.Role,
		Status:      req.Status,
		Password:    req.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Status:  true,
		Message: "User created",
		Data:    user,
	})
}

// ListUsers returns all accounts. Admin only (enforced on the route).
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "Users retrieved",
		Data:    users,
	})
}

// GetUser returns one account. Callers may read themselves; admins anyone.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := pathUserID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	actor, ok := identityFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	if !selfOrAdmin(actor, id) {
		h.logger.Warn("Cross-account read denied",
			zap.String("actorID", actor.UserID.String()),
			zap.String("targetID", id.String()),
		)
		handleServiceError(c, models.ErrForbidden)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "User retrieved",
		Data:    user,
	})
}

// UpdateUser modifies an account. Callers may update themselves; admins
// anyone. Password changes are rejected here, role changes are gated in the
// service layer.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := pathUserID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	actor, ok := identityFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	if !selfOrAdmin(actor, id) {
		h.logger.Warn("Cross-account update denied",
			zap.String("actorID", actor.UserID.String()),
			zap.String("targetID", id.String()),
		)
		handleServiceError(c, models.ErrForbidden)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.NewValidationError("Invalid request body"))
		return
	}
	if req.Password != nil {
		handleServiceError(c, models.NewValidationError("Password cannot be updated here, use the password reset flow"))
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, id, service.UpdateUserInput{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Salutation:  req.Salutation,
		Gender:      req.Gender,
		DateOfBirth: dob,
		Email:       req.Email,
		Phone:       req.Phone,
		RoleID:      req.RoleID,
		Status:      req.Status,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "User updated",
		Data:    user,
	})
}

// DeleteUser removes an account. Admin only (enforced on the route).
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := pathUserID(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "User deleted",
	})
}
