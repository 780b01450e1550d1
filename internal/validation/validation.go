// Package validation holds field validation for user input. Every violation
// returns a models.ValidationError naming the broken rule, so handlers can
// pass the message through to the client.
package validation

import (
	"regexp"
	"strings"

	"user-server/internal/models"
)

var (
	emailRegex       = regexp.MustCompile(`^[A-Za-z0-9]+([._-]?[A-Za-z0-9]+)*@[A-Za-z0-9-]+(\.[A-Za-z]{2,6})+$`)
	phoneRegex       = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	upperRegex       = regexp.MustCompile(`[A-Z]`)
	lowerRegex       = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

var validSalutations = []string{"Mr", "Mrs", "Ms", "Dr", "Prof"}

var validGenders = []string{"Male", "Female", "Other"}

// Password enforces the password policy. Rules are checked in order and the
// first violation is reported.
func Password(password string) error {
	switch {
	case len(password) < 8:
		return models.NewValidationError("Password must be at least 8 characters long")
	case !upperRegex.MatchString(password):
		return models.NewValidationError("Password must contain at least one uppercase letter")
	case !lowerRegex.MatchString(password):
		return models.NewValidationError("Password must contain at least one lowercase letter")
	case !digitRegex.MatchString(password):
		return models.NewValidationError("Password must contain at least one digit")
	case !specialCharRegex.MatchString(password):
		return models.NewValidationError("Password must contain at least one special character")
	}
	return nil
}

// Email checks the address format. The input is expected to be normalized
// (trimmed, lower-cased) already.
func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("Invalid email format")
	}
	return nil
}

// Phone checks for a 10-digit number starting with 6-9.
func Phone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return models.NewValidationError("Phone number must be 10 digits and start with 6-9")
	}
	return nil
}

// Salutation checks membership in the salutation enumeration.
func Salutation(salutation string) error {
	if !inList(salutation, validSalutations) {
		return models.NewValidationError("Salutation must be one of: " + strings.Join(validSalutations, ", "))
	}
	return nil
}

// Gender checks membership in the gender enumeration.
func Gender(gender string) error {
	if !inList(gender, validGenders) {
		return models.NewValidationError("Gender must be one of: " + strings.Join(validGenders, ", "))
	}
	return nil
}

// Status checks membership in the user status enumeration.
func Status(status string) error {
	if !inList(status, models.AllStatuses()) {
		return models.NewValidationError("Status must be one of: " + strings.Join(models.AllStatuses(), ", "))
	}
	return nil
}

// RoleName checks membership in the role enumeration. The name is normalized
// before the check.
func RoleName(name string) error {
	if !models.IsValidRoleName(name) {
		return models.NewValidationError("Role must be one of: " + strings.Join(models.AllRoleNames(), ", "))
	}
	return nil
}

func inList(value string, list []string) bool {
	for _, item := range list {
		if value == item {
			return true
		}
	}
	return false
}
