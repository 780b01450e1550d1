package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-server/internal/models"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Str0ng!pass", ""},
		{"too short", "S0r!t", "Password must be at least 8 characters long"},
		{"no uppercase", "weak1pass!", "Password must contain at least one uppercase letter"},
		{"no lowercase", "WEAK1PASS!", "Password must contain at least one lowercase letter"},
		{"no digit", "Weakpass!", "Password must contain at least one digit"},
		{"no special", "Weak1pass", "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantErr, vErr.Message)
		})
	}
}

func TestEmail(t *testing.T) {
	valid := []string{
		"jane@example.com",
		"jane.doe@example.co.uk",
		"j_doe-1@sub-domain.org",
	}
	for _, email := range valid {
		assert.NoError(t, Email(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"jane@",
		"jane@example",
		"jane..doe@example.com",
		".jane@example.com",
	}
	for _, email := range invalid {
		assert.Error(t, Email(email), email)
	}
}

func TestPhone(t *testing.T) {
	assert.NoError(t, Phone("9876543210"))
	assert.NoError(t, Phone("6000000000"))

	assert.Error(t, Phone("1234567890")) // starts below 6
	assert.Error(t, Phone("98765432"))   // too short
	assert.Error(t, Phone("98765432101"))
	assert.Error(t, Phone("98765abc10"))
}

func TestEnums(t *testing.T) {
	assert.NoError(t, Salutation("Dr"))
	assert.Error(t, Salutation("Sir"))

	assert.NoError(t, Gender("Female"))
	assert.Error(t, Gender("female")) // case sensitive

	assert.NoError(t, Status(models.StatusKYCPending))
	assert.Error(t, Status("Archived"))
}

func TestRoleName(t *testing.T) {
	assert.NoError(t, RoleName("admin"))
	assert.NoError(t, RoleName("  Admin ")) // normalized before the check
	assert.Error(t, RoleName("superuser"))
}
