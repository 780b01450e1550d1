package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// Compile-time check to ensure pgRoleRepository implements RoleRepository
var _ RoleRepository = (*pgRoleRepository)(nil)

type pgRoleRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgRoleRepository creates a new PostgreSQL-backed RoleRepository.
func NewPgRoleRepository(db DBTX, logger *zap.Logger) RoleRepository {
	return &pgRoleRepository{
		db:     db,
		logger: logger.Named("PgRoleRepo"),
	}
}

// Create inserts a new role and fills in the generated ID and created_at.
func (r *pgRoleRepository) Create(ctx context.Context, role *models.Role) error {
	query := `INSERT INTO roles (role_name) VALUES ($1) RETURNING id, created_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("roleName", role.RoleName))

	err := r.db.QueryRow(ctx, query, role.RoleName).Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			r.logger.Warn("Attempted to create duplicate role", zap.String("roleName", role.RoleName))
			return models.ErrRoleAlreadyExists
		}
		r.logger.Error("Failed to create role in postgres", zap.Error(err), zap.String("roleName", role.RoleName))
		return fmt.Errorf("failed to create role in postgres: %w", err)
	}
	r.logger.Info("Role created successfully", zap.String("roleID", role.ID.String()), zap.String("roleName", role.RoleName))
	return nil
}

// GetByID retrieves a role by ID.
func (r *pgRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	query := `SELECT id, role_name, created_at FROM roles WHERE id = $1`
	role := &models.Role{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))

	err := r.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.RoleName, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Role not found by ID", zap.String("id", id.String()))
			return nil, models.ErrRoleNotFound
		}
		r.logger.Error("Failed to get role by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get role by id from postgres: %w", err)
	}
	return role, nil
}

// GetByName retrieves a role by its normalized name.
func (r *pgRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT id, role_name, created_at FROM roles WHERE role_name = $1`
	role := &models.Role{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("roleName", name))

	err := r.db.QueryRow(ctx, query, name).Scan(&role.ID, &role.RoleName, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Role not found by name", zap.String("roleName", name))
			return nil, models.ErrRoleNotFound
		}
		r.logger.Error("Failed to get role by name from postgres", zap.Error(err), zap.String("roleName", name))
		return nil, fmt.Errorf("failed to get role by name from postgres: %w", err)
	}
	return role, nil
}

// List retrieves all roles.
func (r *pgRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	query := `SELECT id, role_name, created_at FROM roles ORDER BY role_name ASC`
	r.logger.Debug("Executing query", zap.String("query", query))

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query roles from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.RoleName, &role.CreatedAt); err != nil {
			r.logger.Error("Failed to scan role row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating role rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}
	return roles, nil
}

// Update renames a role.
func (r *pgRoleRepository) Update(ctx context.Context, role *models.Role) error {
	query := `UPDATE roles SET role_name = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("roleID", role.ID.String()))

	cmdTag, err := r.db.Exec(ctx, query, role.RoleName, role.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to rename role to existing name", zap.String("roleName", role.RoleName))
			return models.ErrRoleAlreadyExists
		}
		r.logger.Error("Failed to update role in postgres", zap.Error(err), zap.String("roleID", role.ID.String()))
		return fmt.Errorf("failed to update role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent role", zap.String("roleID", role.ID.String()))
		return models.ErrRoleNotFound
	}
	r.logger.Info("Role updated successfully", zap.String("roleID", role.ID.String()))
	return nil
}

// Delete removes a role. Users referencing it keep a NULL role_id via the
// schema's ON DELETE SET NULL.
func (r *pgRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM roles WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("roleID", id.String()))

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete role from postgres", zap.Error(err), zap.String("roleID", id.String()))
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent role", zap.String("roleID", id.String()))
		return models.ErrRoleNotFound
	}
	r.logger.Info("Role deleted successfully", zap.String("roleID", id.String()))
	return nil
}
