package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role names form a closed enumeration. Stored and compared in lower case.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// DefaultRoleName is assumed when a user has no role assigned.
	DefaultRoleName = RoleUser
)

// AllRoleNames returns the full set of valid role names.
func AllRoleNames() []string {
	return []string{RoleAdmin, RoleUser}
}

// NormalizeRoleName canonicalizes a role name for storage and comparison.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsValidRoleName reports whether name belongs to the role enumeration.
func IsValidRoleName(name string) bool {
	normalized := NormalizeRoleName(name)
	for _, known := range AllRoleNames() {
		if normalized == known {
			return true
		}
	}
	return false
}

// RoleAllowed reports whether roleName matches any of the allowed names,
// case-insensitively. An empty roleName counts as the default role.
func RoleAllowed(roleName string, allowed ...string) bool {
	normalized := NormalizeRoleName(roleName)
	if normalized == "" {
		normalized = DefaultRoleName
	}
	for _, a := range allowed {
		if normalized == NormalizeRoleName(a) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether roleName grants administrative capabilities.
func IsAdmin(roleName string) bool {
	return RoleAllowed(roleName, RoleAdmin)
}

// Role represents a role record.
type Role struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RoleName  string    `db:"role_name" json:"role_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
