package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-server/internal/models"
	"user-server/internal/repository"
	"user-server/internal/validation"
)

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	FirstName   string
	MiddleName  *string
	LastName    string
	Salutation  *string
	Gender      *string
	DateOfBirth *time.Time
	Email       string
	Phone       *string
	RoleName    string
	Status      string
	Password    string
}

// UpdateUserInput carries the optional fields accepted when updating a
// user. Nil pointers leave the stored value untouched.
type UpdateUserInput struct {
	FirstName   *string
	MiddleName  *string
	LastName    *string
	Salutation  *string
	Gender      *string
	DateOfBirth *time.Time
	Email       *string
	Phone       *string
	RoleID      *uuid.UUID
	Status      *string
}

// UserService defines account management operations. Field-level rules that
// depend on who is asking take the actor's identity.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, actor models.Identity, id uuid.UUID, input UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Compile-time check to ensure userServiceImpl implements UserService
var _ UserService = (*userServiceImpl)(nil)

type userServiceImpl struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	logger   *zap.Logger
}

// NewUserService creates a new userServiceImpl.
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger.Named("UserService"),
	}
}

// Create validates the input, hashes the password and stores the account.
func (s *userServiceImpl) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	s.logger.Info("Creating user", zap.String("email", email))

	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, models.NewValidationError("First name and last name are required")
	}
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if err := validation.Password(input.Password); err != nil {
		return nil, err
	}
	if input.Phone != nil {
		if err := validation.Phone(*input.Phone); err != nil {
			return nil, err
		}
	}
	if input.Salutation != nil {
		if err := validation.Salutation(*input.Salutation); err != nil {
			return nil, err
		}
	}
	if input.Gender != nil {
		if err := validation.Gender(*input.Gender); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = models.StatusActive
	}
	if err := validation.Status(status); err != nil {
		return nil, err
	}

	roleName := models.NormalizeRoleName(input.RoleName)
	if roleName == "" {
		roleName = models.DefaultRoleName
	}
	if err := validation.RoleName(roleName); err != nil {
		return nil, err
	}
	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, models.ErrRoleNotFound) {
			s.logger.Warn("Create user with unseeded role", zap.String("roleName", roleName))
			return nil, models.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to resolve role: %w", err)
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during user creation", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		MiddleName:   input.MiddleName,
		LastName:     strings.TrimSpace(input.LastName),
		Salutation:   input.Salutation,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		Email:        email,
		Phone:        input.Phone,
		RoleID:       &role.ID,
		RoleName:     role.RoleName,
		Status:       status,
		PasswordHash: passwordHash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return user, nil
}

// GetByID fetches a single user.
func (s *userServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List fetches all users.
func (s *userServiceImpl) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// Update applies the provided fields. Role changes require an admin actor;
// password changes go through the reset flow, never through here.
func (s *userServiceImpl) Update(ctx context.Context, actor models.Identity, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	log := s.logger.With(zap.String("userID", id.String()), zap.String("actorID", actor.UserID.String()))
	log.Info("Updating user")

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, models.NewValidationError("First name cannot be empty")
		}
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.MiddleName != nil {
		user.MiddleName = input.MiddleName
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, models.NewValidationError("Last name cannot be empty")
		}
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Salutation != nil {
		if err := validation.Salutation(*input.Salutation); err != nil {
			return nil, err
		}
		user.Salutation = input.Salutation
	}
	if input.Gender != nil {
		if err := validation.Gender(*input.Gender); err != nil {
			return nil, err
		}
		user.Gender = input.Gender
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := validation.Email(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Phone != nil {
		if err := validation.Phone(*input.Phone); err != nil {
			return nil, err
		}
		user.Phone = input.Phone
	}
	if input.RoleID != nil {
		if !models.IsAdmin(actor.RoleName) {
			log.Warn("Non-admin attempted role change")
			return nil, models.ErrForbidden
		}
		role, err := s.roleRepo.GetByID(ctx, *input.RoleID)
		if err != nil {
			return nil, err
		}
		user.RoleID = &role.ID
		user.RoleName = role.RoleName
	}
	if input.Status != nil {
		if err := validation.Status(*input.Status); err != nil {
			return nil, err
		}
		user.Status = *input.Status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("User updated")
	return user, nil
}

// Delete removes an account.
func (s *userServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Info("Deleting user", zap.String("userID", id.String()))
	return s.userRepo.Delete(ctx, id)
}
