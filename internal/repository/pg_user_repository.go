package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ UserRepository = (*pgUserRepository)(nil)

// userColumns is the SELECT list shared by every user query. role_name comes
// from a LEFT JOIN on roles; users without a role fall back to the default.
const userColumns = `u.id, u.first_name, u.middle_name, u.last_name, u.salutation, u.gender,
	u.date_of_birth, u.email, u.phone, u.role_id, COALESCE(r.role_name, 'user'), u.status,
	u.password_hash, u.created_at, u.last_login`

const userFrom = ` FROM users u LEFT JOIN roles r ON r.id = u.role_id`

type pgUserRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db DBTX, logger *zap.Logger) UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(&user.ID, &user.FirstName, &user.MiddleName, &user.LastName,
		&user.Salutation, &user.Gender, &user.DateOfBirth, &user.Email, &user.Phone,
		&user.RoleID, &user.RoleName, &user.Status, &user.PasswordHash,
		&user.CreatedAt, &user.LastLogin)
}

// Create inserts a new user and fills in the generated ID and created_at.
func (r *pgUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (first_name, middle_name, last_name, salutation, gender,
		date_of_birth, email, phone, role_id, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", user.Email))

	err := r.db.QueryRow(ctx, query, user.FirstName, user.MiddleName, user.LastName,
		user.Salutation, user.Gender, user.DateOfBirth, user.Email, user.Phone,
		user.RoleID, user.Status, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			r.logger.Warn("Attempted to create user with duplicate email", zap.String("email", user.Email))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID.
func (r *pgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.id = $1`
	user := &models.User{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))

	if err := scanUser(r.db.QueryRow(ctx, query, id), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by ID", zap.String("id", id.String()))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get user by id from postgres: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.email = $1`
	user := &models.User{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", email))

	if err := scanUser(r.db.QueryRow(ctx, query, email), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by email", zap.String("email", email))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by email from postgres", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email from postgres: %w", err)
	}
	return user, nil
}

// List retrieves all users ordered by creation time.
// TODO: Add pagination (LIMIT, OFFSET)
func (r *pgUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` ORDER BY u.created_at ASC`
	r.logger.Debug("Executing query", zap.String("query", query))

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query users from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	return r.collectUsers(rows)
}

// Update persists the mutable fields of a user.
func (r *pgUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET first_name = $1, middle_name = $2, last_name = $3,
		salutation = $4, gender = $5, date_of_birth = $6, email = $7, phone = $8,
		role_id = $9, status = $10 WHERE id = $11`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", user.ID.String()))

	cmdTag, err := r.db.Exec(ctx, query, user.FirstName, user.MiddleName, user.LastName,
		user.Salutation, user.Gender, user.DateOfBirth, user.Email, user.Phone,
		user.RoleID, user.Status, user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to update user to duplicate email", zap.String("userID", user.ID.String()))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to update user in postgres", zap.Error(err), zap.String("userID", user.ID.String()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent user", zap.String("userID", user.ID.String()))
		return models.ErrUserNotFound
	}
	r.logger.Info("User updated successfully", zap.String("userID", user.ID.String()))
	return nil
}

// UpdateLastLogin records a successful login timestamp.
func (r *pgUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", id.String()))

	cmdTag, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to update last login in postgres", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *pgUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", id.String()))

	cmdTag, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		r.logger.Error("Failed to update password hash in postgres", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update password for non-existent user", zap.String("userID", id.String()))
		return models.ErrUserNotFound
	}
	r.logger.Info("Password hash updated successfully", zap.String("userID", id.String()))
	return nil
}

// UpdateStatus sets the user's status.
func (r *pgUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE users SET status = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", id.String()), zap.String("status", status))

	cmdTag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update user status in postgres", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// ListInactiveSince returns Active users whose last login is older than the
// cutoff. Users who never logged in are counted from their creation time.
func (r *pgUserRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]models.User, error) {
	query := `SELECT ` + userColumns + userFrom + `
		WHERE u.status = 'Active' AND COALESCE(u.last_login, u.created_at) < $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.Time("cutoff", cutoff))

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("Failed to query inactive users from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query inactive users: %w", err)
	}
	defer rows.Close()

	return r.collectUsers(rows)
}

// ListAdmins returns all users holding the admin role.
func (r *pgUserRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE r.role_name = 'admin'`
	r.logger.Debug("Executing query", zap.String("query", query))

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query admin users from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query admin users: %w", err)
	}
	defer rows.Close()

	return r.collectUsers(rows)
}

// Delete removes a user.
func (r *pgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", id.String()))

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete user from postgres", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent user", zap.String("userID", id.String()))
		return models.ErrUserNotFound
	}
	r.logger.Info("User deleted successfully", zap.String("userID", id.String()))
	return nil
}

func (r *pgUserRepository) collectUsers(rows pgx.Rows) ([]models.User, error) {
	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			r.logger.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating user rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
