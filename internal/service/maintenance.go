package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-server/internal/messaging"
	"user-server/internal/models"
	"user-server/internal/repository"
)

// MaintenanceService runs the periodic housekeeping jobs. Each method is a
// single job run; scheduling lives in internal/scheduler.
type MaintenanceService interface {
	// DeactivateInactiveUsers moves Active users without a login since the
	// cutoff to Inactive. Returns how many users were deactivated.
	DeactivateInactiveUsers(ctx context.Context) (int, error)
	// SendUserReports emails a status summary of all users to every admin.
	SendUserReports(ctx context.Context) error
	// BackupUsers writes a CSV snapshot of the users table and returns the
	// file path.
	BackupUsers(ctx context.Context) (string, error)
}

// Compile-time check to ensure maintenanceServiceImpl implements MaintenanceService
var _ MaintenanceService = (*maintenanceServiceImpl)(nil)

type maintenanceServiceImpl struct {
	userRepo         repository.UserRepository
	publisher        messaging.EmailPublisher
	inactivityCutoff time.Duration
	backupDir        string
	logger           *zap.Logger
}

// NewMaintenanceService creates a new maintenanceServiceImpl.
func NewMaintenanceService(
	userRepo repository.UserRepository,
	publisher messaging.EmailPublisher,
	inactivityCutoff time.Duration,
	backupDir string,
	logger *zap.Logger,
) MaintenanceService {
	return &maintenanceServiceImpl{
		userRepo:         userRepo,
		publisher:        publisher,
		inactivityCutoff: inactivityCutoff,
		backupDir:        backupDir,
		logger:           logger.Named("MaintenanceService"),
	}
}

// DeactivateInactiveUsers deactivates stale Active accounts.
func (s *maintenanceServiceImpl) DeactivateInactiveUsers(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.inactivityCutoff)
	s.logger.Info("Deactivating inactive users", zap.Time("cutoff", cutoff))

	stale, err := s.userRepo.ListInactiveSince(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list inactive users", zap.Error(err))
		return 0, fmt.Errorf("failed to list inactive users: %w", err)
	}

	deactivated := 0
	for _, user := range stale {
		if err := s.userRepo.UpdateStatus(ctx, user.ID, models.StatusInactive); err != nil {
			// Keep going; one failed update should not abort the sweep.
			s.logger.Error("Failed to deactivate user", zap.Error(err), zap.String("userID", user.ID.String()))
			continue
		}
		deactivated++
	}

	s.logger.Info("Inactive user sweep finished", zap.Int("candidates", len(stale)), zap.Int("deactivated", deactivated))
	return deactivated, nil
}

// SendUserReports enqueues a per-user status report for every admin.
func (s *maintenanceServiceImpl) SendUserReports(ctx context.Context) error {
	s.logger.Info("Building user status report")

	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list users for report", zap.Error(err))
		return fmt.Errorf("failed to list users for report: %w", err)
	}

	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		s.logger.Error("Failed to list admins for report", zap.Error(err))
		return fmt.Errorf("failed to list admins for report: %w", err)
	}
	if len(admins) == 0 {
		s.logger.Warn("No admins to receive user report")
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User status report (%s)\n\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Total users: %d\n\n", len(users)))
	for _, user := range users {
		lastLogin := "never"
		if user.LastLogin != nil {
			lastLogin = user.LastLogin.UTC().Format(time.RFC3339)
		}
		sb.WriteString(fmt.Sprintf("- %s <%s>: %s (last login: %s)\n",
			user.FullName(), user.Email, user.Status, lastLogin))
	}
	body := sb.String()

	for _, admin := range admins {
		msg := messaging.EmailMessage{
			To:      admin.Email,
			Subject: "Daily User Status Report",
			Body:    body,
		}
		if err := s.publisher.PublishEmail(ctx, msg); err != nil {
			s.logger.Error("Failed to enqueue report email", zap.Error(err), zap.String("admin", admin.Email))
			return fmt.Errorf("failed to enqueue report email: %w", err)
		}
	}

	s.logger.Info("User reports enqueued", zap.Int("admins", len(admins)))
	return nil
}

// BackupUsers dumps the users table to a timestamped CSV file.
func (s *maintenanceServiceImpl) BackupUsers(ctx context.Context) (string, error) {
	s.logger.Info("Backing up users table", zap.String("dir", s.backupDir))

	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list users for backup", zap.Error(err))
		return "", fmt.Errorf("failed to list users for backup: %w", err)
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		s.logger.Error("Failed to create backup directory", zap.Error(err))
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(s.backupDir, fmt.Sprintf("users_backup_%s.csv", time.Now().UTC().Format("20060102T150405")))
	file, err := os.Create(path)
	if err != nil {
		s.logger.Error("Failed to create backup file", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"id", "first_name", "middle_name", "last_name", "salutation", "gender",
		"date_of_birth", "email", "phone", "role_name", "status", "created_at", "last_login"}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write backup header: %w", err)
	}

	for _, user := range users {
		record := []string{
			user.ID.String(),
			user.FirstName,
			strValue(user.MiddleName),
			user.LastName,
			strValue(user.Salutation),
			strValue(user.Gender),
			timeValue(user.DateOfBirth, "2006-01-02"),
			user.Email,
			strValue(user.Phone),
			user.RoleName,
			user.Status,
			user.CreatedAt.UTC().Format(time.RFC3339),
			timeValue(user.LastLogin, time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write backup record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		s.logger.Error("Failed to flush backup file", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("failed to flush backup file: %w", err)
	}

	s.logger.Info("Users backup written", zap.String("path", path), zap.Int("users", len(users)))
	return path, nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeValue(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(layout)
}
