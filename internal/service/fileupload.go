package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"user-server/internal/models"
)

// allowedUploadExts is the closed set of accepted upload file types.
var allowedUploadExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".pdf":  {},
	".txt":  {},
	".csv":  {},
}

// FileService stores user uploads under a single directory.
type FileService interface {
	// Save writes the upload and returns the stored path. The filename is
	// sanitized; files outside the extension allow-list are rejected.
	Save(ctx context.Context, filename string, src io.Reader) (string, error)
}

// Compile-time check to ensure fileServiceImpl implements FileService
var _ FileService = (*fileServiceImpl)(nil)

type fileServiceImpl struct {
	uploadDir string
	logger    *zap.Logger
}

// NewFileService creates a new fileServiceImpl.
func NewFileService(uploadDir string, logger *zap.Logger) FileService {
	return &fileServiceImpl{
		uploadDir: uploadDir,
		logger:    logger.Named("FileService"),
	}
}

func (s *fileServiceImpl) Save(_ context.Context, filename string, src io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedUploadExts[ext]; !ok || strings.TrimSuffix(name, ext) == "" {
		s.logger.Warn("Rejected upload with disallowed file type", zap.String("filename", filename))
		return "", models.NewValidationError("File type not allowed")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.logger.Error("Failed to create upload directory", zap.Error(err))
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		s.logger.Error("Failed to create upload file", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		s.logger.Error("Failed to write upload file", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.logger.Info("File uploaded", zap.String("path", path), zap.Int64("bytes", written))
	return path, nil
}

// sanitizeFilename strips any directory component and replaces characters
// outside [A-Za-z0-9._-] so the stored name cannot escape the upload dir.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
