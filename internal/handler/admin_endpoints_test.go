package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-server/internal/models"
)

func TestManualTriggers_AdminOnly(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())
	user := env.accessToken(t, uuid.New(), models.RoleUser)

	for _, path := range []string{"/manual/deactivate", "/manual/reports", "/manual/backup"} {
		rec := env.do(t, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = env.do(t, http.MethodPost, path, user, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestTriggerDeactivation_ReportsCount(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())
	env.maintenance.deactivated = 3

	rec := env.do(t, http.MethodPost, "/manual/deactivate",
		env.accessToken(t, uuid.New(), models.RoleAdmin), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, data["deactivated"])
}

func TestTriggerBackup_ReturnsPath(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())
	env.maintenance.backupPath = "backups/users_backup_20260828T000000.csv"

	rec := env.do(t, http.MethodPost, "/manual/backup",
		env.accessToken(t, uuid.New(), models.RoleAdmin), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, env.maintenance.backupPath, data["path"])
}
