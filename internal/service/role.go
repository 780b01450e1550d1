package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-server/internal/models"
	"user-server/internal/repository"
	"user-server/internal/validation"
)

// RoleService defines role management. Role names form a closed
// enumeration; creation and rename only accept names from it.
type RoleService interface {
	Create(ctx context.Context, roleName string) (*models.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Update(ctx context.Context, id uuid.UUID, roleName string) (*models.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Compile-time check to ensure roleServiceImpl implements RoleService
var _ RoleService = (*roleServiceImpl)(nil)

type roleServiceImpl struct {
	roleRepo repository.RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new roleServiceImpl.
func NewRoleService(roleRepo repository.RoleRepository, logger *zap.Logger) RoleService {
	return &roleServiceImpl{
		roleRepo: roleRepo,
		logger:   logger.Named("RoleService"),
	}
}

// Create stores a new role under its normalized name.
func (s *roleServiceImpl) Create(ctx context.Context, roleName string) (*models.Role, error) {
	normalized := models.NormalizeRoleName(roleName)
	s.logger.Info("Creating role", zap.String("roleName", normalized))

	if err := validation.RoleName(normalized); err != nil {
		return nil, err
	}

	role := &models.Role{RoleName: normalized}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role created", zap.String("roleID", role.ID.String()))
	return role, nil
}

// GetByID fetches a single role.
func (s *roleServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.roleRepo.GetByID(ctx, id)
}

// List fetches all roles.
func (s *roleServiceImpl) List(ctx context.Context) ([]models.Role, error) {
	return s.roleRepo.List(ctx)
}

// Update renames a role within the enumeration.
func (s *roleServiceImpl) Update(ctx context.Context, id uuid.UUID, roleName string) (*models.Role, error) {
	normalized := models.NormalizeRoleName(roleName)
	s.logger.Info("Updating role", zap.String("roleID", id.String()), zap.String("roleName", normalized))

	if err := validation.RoleName(normalized); err != nil {
		return nil, err
	}

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role.RoleName = normalized

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a role. Users holding it fall back to the default role.
func (s *roleServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Info("Deleting role", zap.String("roleID", id.String()))
	return s.roleRepo.Delete(ctx, id)
}
