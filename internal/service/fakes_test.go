package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"user-server/internal/messaging"
	"user-server/internal/models"
	"user-server/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository for unit tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	failUpdateLastLogin bool
	failUpdatePassword  bool
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) add(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	clone := *user
	f.users[user.ID] = &clone
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return models.ErrEmailAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, *user)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return models.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != user.ID && existing.Email == user.Email {
			return models.ErrEmailAlreadyExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.failUpdateLastLogin {
		return models.ErrInternalServer
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.LastLogin = &at
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	if f.failUpdatePassword {
		return models.ErrInternalServer
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.Status = status
	return nil
}

func (f *fakeUserRepo) ListInactiveSince(_ context.Context, cutoff time.Time) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]models.User, 0)
	for _, user := range f.users {
		if user.Status != models.StatusActive {
			continue
		}
		reference := user.CreatedAt
		if user.LastLogin != nil {
			reference = *user.LastLogin
		}
		if reference.Before(cutoff) {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) ListAdmins(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	admins := make([]models.User, 0)
	for _, user := range f.users {
		if strings.EqualFold(user.RoleName, models.RoleAdmin) {
			admins = append(admins, *user)
		}
	}
	return admins, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return models.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeRoleRepo is an in-memory RoleRepository for unit tests.
type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[uuid.UUID]*models.Role
}

var _ repository.RoleRepository = (*fakeRoleRepo)(nil)

func newFakeRoleRepo() *fakeRoleRepo {
	f := &fakeRoleRepo{roles: make(map[uuid.UUID]*models.Role)}
	for _, name := range models.AllRoleNames() {
		role := &models.Role{ID: uuid.New(), RoleName: name, CreatedAt: time.Now().UTC()}
		f.roles[role.ID] = role
	}
	return f
}

func (f *fakeRoleRepo) byName(name string) *models.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range f.roles {
		if role.RoleName == name {
			clone := *role
			return &clone
		}
	}
	return nil
}

func (f *fakeRoleRepo) Create(_ context.Context, role *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.roles {
		if existing.RoleName == role.RoleName {
			return models.ErrRoleAlreadyExists
		}
	}
	role.ID = uuid.New()
	role.CreatedAt = time.Now().UTC()
	clone := *role
	f.roles[role.ID] = &clone
	return nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return nil, models.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	if role := f.byName(name); role != nil {
		return role, nil
	}
	return nil, models.ErrRoleNotFound
}

func (f *fakeRoleRepo) List(_ context.Context) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roles := make([]models.Role, 0, len(f.roles))
	for _, role := range f.roles {
		roles = append(roles, *role)
	}
	return roles, nil
}

func (f *fakeRoleRepo) Update(_ context.Context, role *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role.ID]; !ok {
		return models.ErrRoleNotFound
	}
	clone := *role
	f.roles[role.ID] = &clone
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return models.ErrRoleNotFound
	}
	delete(f.roles, id)
	return nil
}

// fakePublisher records published email messages.
type fakePublisher struct {
	mu       sync.Mutex
	messages []messaging.EmailMessage
	failNext bool
}

var _ messaging.EmailPublisher = (*fakePublisher)(nil)

func (f *fakePublisher) PublishEmail(_ context.Context, msg messaging.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return models.ErrInternalServer
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) sent() []messaging.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messaging.EmailMessage(nil), f.messages...)
}
