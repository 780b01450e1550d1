package models

import (
	"time"

	"github.com/google/uuid"
)

// User statuses form a closed enumeration; anything else is rejected at
// the validation layer.
const (
	StatusActive             = "Active"
	StatusInactive           = "Inactive"
	StatusInterviewScheduled = "Interview Scheduled"
	StatusOnboarding         = "Onboarding"
	StatusKYCPending         = "KYC Pending"
	StatusUnderReview        = "Under Review"
	StatusTerminated         = "Terminated"
)

// AllStatuses returns the full set of valid user statuses.
func AllStatuses() []string {
	return []string{
		StatusActive,
		StatusInactive,
		StatusInterviewScheduled,
		StatusOnboarding,
		StatusKYCPending,
		StatusUnderReview,
		StatusTerminated,
	}
}

// User represents a user account.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	MiddleName   *string    `db:"middle_name" json:"middle_name,omitempty"`
	LastName     string     `db:"last_name" json:"last_name"`
	Salutation   *string    `db:"salutation" json:"salutation,omitempty"`
	Gender       *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Email        string     `db:"email" json:"email"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	RoleID       *uuid.UUID `db:"role_id" json:"role_id,omitempty"`
	RoleName     string     `db:"role_name" json:"role_name"`
	Status       string     `db:"status" json:"status"`
	PasswordHash string     `db:"password_hash" json:"-"` // never serialized
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// FullName joins the user's name parts, skipping an absent middle name.
func (u *User) FullName() string {
	if u.MiddleName != nil && *u.MiddleName != "" {
		return u.FirstName + " " + *u.MiddleName + " " + u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// Identity is the slice of user state embedded into access tokens and
// attached to authenticated requests.
type Identity struct {
	UserID   uuid.UUID  `json:"user_id"`
	Email    string     `json:"email"`
	RoleID   *uuid.UUID `json:"role_id,omitempty"`
	RoleName string     `json:"role_name"`
}

// Identity derives the token identity from the stored user record.
func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Email:    u.Email,
		RoleID:   u.RoleID,
		RoleName: u.RoleName,
	}
}
