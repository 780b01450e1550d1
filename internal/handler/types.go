package handler

import (
	"time"

	"github.com/google/uuid"

	"user-server/internal/models"
)

// dateOnly is the wire format for date_of_birth.
const dateOnly = "2006-01-02"

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type createUserRequest struct {
	FirstName   string  `json:"first_name" binding:"required"`
	MiddleName  *string `json:"middle_name"`
	LastName    string  `json:"last_name" binding:"required"`
	Salutation  *string `json:"salutation"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"date_of_birth"`
	Email       string  `json:"email" binding:"required"`
	Phone       *string `json:"phone"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	Password    string  `json:"password" binding:"required"`
}

type updateUserRequest struct {
	FirstName   *string    `json:"first_name"`
	MiddleName  *string    `json:"middle_name"`
	LastName    *string    `json:"last_name"`
	Salutation  *string    `json:"salutation"`
	Gender      *string    `json:"gender"`
	DateOfBirth *string    `json:"date_of_birth"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	RoleID      *uuid.UUID `json:"role_id"`
	Status      *string    `json:"status"`
	// Password changes go through the reset flow; presence here is an error.
	Password *string `json:"password"`
}

type roleRequest struct {
	RoleName string `json:"role_name" binding:"required"`
}

type loginResponse struct {
	Tokens *models.TokenDetails `json:"tokens"`
	User   *models.User         `json:"user"`
}

func parseDateOfBirth(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateOnly, *raw)
	if err != nil {
		return nil, models.NewValidationError("date_of_birth must be in YYYY-MM-DD format")
	}
	return &parsed, nil
}
