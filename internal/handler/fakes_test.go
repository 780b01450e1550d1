package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-server/internal/config"
	"user-server/internal/models"
	"user-server/internal/service"
	"user-server/internal/token"
)

type fakeAuthService struct {
	loginResult   *service.LoginResult
	loginErr      error
	refreshTokens *models.TokenDetails
	refreshErr    error
	logoutTokens  []string
	logoutErr     error
	forgotEmails  []string
	forgotErr     error
	resetErr      error
}

var _ service.AuthService = (*fakeAuthService)(nil)

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (*service.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuthService) Refresh(_ context.Context, _ string) (*models.TokenDetails, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshTokens, nil
}

func (f *fakeAuthService) Logout(_ context.Context, bearerToken string) error {
	f.logoutTokens = append(f.logoutTokens, bearerToken)
	return f.logoutErr
}

func (f *fakeAuthService) ForgotPassword(_ context.Context, email string) error {
	f.forgotEmails = append(f.forgotEmails, email)
	return f.forgotErr
}

func (f *fakeAuthService) ResetPassword(_ context.Context, _, _ string) error {
	return f.resetErr
}

type fakeUserService struct {
	users      map[uuid.UUID]*models.User
	lastActor  *models.Identity
	deletedIDs []uuid.UUID
}

var _ service.UserService = (*fakeUserService)(nil)

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserService) add(user *models.User) *models.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserService) Create(_ context.Context, input service.CreateUserInput) (*models.User, error) {
	return f.add(&models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		RoleName:  input.RoleName,
		Status:    input.Status,
	}), nil
}

func (f *fakeUserService) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserService) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserService) Update(_ context.Context, actor models.Identity, id uuid.UUID, input service.UpdateUserInput) (*models.User, error) {
	f.lastActor = &actor
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	return user, nil
}

func (f *fakeUserService) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return models.ErrUserNotFound
	}
	delete(f.users, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type fakeRoleService struct {
	roles map[uuid.UUID]*models.Role
}

var _ service.RoleService = (*fakeRoleService)(nil)

func newFakeRoleService() *fakeRoleService {
	return &fakeRoleService{roles: map[uuid.UUID]*models.Role{}}
}

func (f *fakeRoleService) Create(_ context.Context, roleName string) (*models.Role, error) {
	role := &models.Role{ID: uuid.New(), RoleName: models.NormalizeRoleName(roleName), CreatedAt: time.Now()}
	f.roles[role.ID] = role
	return role, nil
}

func (f *fakeRoleService) GetByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, models.ErrRoleNotFound
	}
	return role, nil
}

func (f *fakeRoleService) List(_ context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0, len(f.roles))
	for _, role := range f.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (f *fakeRoleService) Update(_ context.Context, id uuid.UUID, roleName string) (*models.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, models.ErrRoleNotFound
	}
	role.RoleName = models.NormalizeRoleName(roleName)
	return role, nil
}

func (f *fakeRoleService) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.roles[id]; !ok {
		return models.ErrRoleNotFound
	}
	delete(f.roles, id)
	return nil
}

type fakeMaintenanceService struct {
	deactivated int
	reportsErr  error
	backupPath  string
}

var _ service.MaintenanceService = (*fakeMaintenanceService)(nil)

func (f *fakeMaintenanceService) DeactivateInactiveUsers(_ context.Context) (int, error) {
	return f.deactivated, nil
}

func (f *fakeMaintenanceService) SendUserReports(_ context.Context) error {
	return f.reportsErr
}

func (f *fakeMaintenanceService) BackupUsers(_ context.Context) (string, error) {
	return f.backupPath, nil
}

// testEnv bundles a wired router with its fakes and token plumbing. The
// file service is real, writing into a per-test temp dir.
type testEnv struct {
	router      *gin.Engine
	codec       *token.Codec
	authService *fakeAuthService
	userService *fakeUserService
	roleService *fakeRoleService
	maintenance *fakeMaintenanceService
	uploadDir   string
}

// testRouteLimits keeps limits high enough that only the dedicated
// rate-limit tests ever hit them.
func testRouteLimits() map[string]config.RouteLimit {
	limits := make(map[string]config.RouteLimit)
	for _, route := range []string{
		"login", "forgot-password", "reset-password", "refresh", "logout",
		"user-create", "user-list", "user-get", "user-update", "user-delete",
		"file-upload",
	} {
		limits[route] = config.RouteLimit{Limit: 100, Window: time.Minute}
	}
	return limits
}

func newTestEnv(t *testing.T, limits map[string]config.RouteLimit) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec := token.NewCodec("handler-test-secret", "user-server-test", 15*time.Minute, 7*24*time.Hour, 15*time.Minute)
	blacklist := token.NewMemoryBlacklist(time.Minute, zap.NewNop())
	t.Cleanup(blacklist.Stop)
	verifier := token.NewVerifier(codec, blacklist, zap.NewNop())

	env := &testEnv{
		codec:       codec,
		authService: &fakeAuthService{},
		userService: newFakeUserService(),
		roleService: newFakeRoleService(),
		maintenance: &fakeMaintenanceService{},
		uploadDir:   t.TempDir(),
	}
	fileService := service.NewFileService(env.uploadDir, zap.NewNop())

	h := NewHandler(
		env.authService, env.userService, env.roleService, env.maintenance,
		fileService, verifier, limits, NewMemoryLimiterFactory(), zap.NewNop(),
	)
	env.router = gin.New()
	h.RegisterRoutes(env.router)
	return env
}

// accessToken issues a signed access token for the given role.
func (e *testEnv) accessToken(t *testing.T, userID uuid.UUID, roleName string) string {
	t.Helper()
	tokenString, _, err := e.codec.IssueAccess(models.Identity{
		UserID:   userID,
		Email:    "actor@example.com",
		RoleName: roleName,
	})
	require.NoError(t, err)
	return tokenString
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
