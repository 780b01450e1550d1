package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-server/internal/models"
)

func (e *testEnv) doUpload(t *testing.T, bearer, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/files/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadFile_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())

	rec := env.doUpload(t, "", "file", "notes.txt", []byte("hello"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Login required", decodeError(t, rec).Error)
}

func TestUploadFile_Success(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())

	rec := env.doUpload(t, env.accessToken(t, uuid.New(), models.RoleUser),
		"file", "notes.txt", []byte("hello"))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Status)
	assert.Equal(t, "File uploaded successfully", resp.Message)

	content, err := os.ReadFile(filepath.Join(env.uploadDir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestUploadFile_MissingFilePart(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())

	rec := env.doUpload(t, env.accessToken(t, uuid.New(), models.RoleUser), "", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decodeError(t, rec).Error)
}

func TestUploadFile_DisallowedType(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())

	rec := env.doUpload(t, env.accessToken(t, uuid.New(), models.RoleUser),
		"file", "malware.exe", []byte("MZ"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File type not allowed", decodeError(t, rec).Error)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadFile_TraversalFilenameStaysInUploadDir(t *testing.T) {
	env := newTestEnv(t, testRouteLimits())

	rec := env.doUpload(t, env.accessToken(t, uuid.New(), models.RoleUser),
		"file", "../escape.txt", []byte("x"))

	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := os.Stat(filepath.Join(env.uploadDir, "escape.txt"))
	assert.NoError(t, err)
}
