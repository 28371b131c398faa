package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "handler-test-secret",
			AccessTokenTTLMinutes: 15,
			RefreshTokenTTLHours:  24,
			BcryptCost:            bcrypt.MinCost,
			MinPasswordLength:     6,
		},
	}

	repo := newMemoryUserRepo()
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: repo})
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), repo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("auth-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: authMiddleware,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func registerPayload(email string) map[string]string {
	return map[string]string{"email": email, "password": "secret1", "role": "CUSTOMER"}
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %v", body)
	code, _ := e["code"].(string)
	return code
}

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/auth/register", registerPayload("alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, status)

	d := data(t, body)
	assert.NotEmpty(t, d["accessToken"])
	assert.NotEmpty(t, d["refreshToken"])
	assert.NotEmpty(t, d["expiresAt"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]string{"email": "alice@example.com", "password": "12345", "role": "CUSTOMER"}
	status, body := doJSON(t, app, http.MethodPost, "/auth/register", payload, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/auth/register", registerPayload("alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/auth/register", registerPayload("alice@example.com"), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_USER", errorCode(t, body))
}

func TestLoginEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/auth/register", registerPayload("alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "alice@example.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, data(t, body)["accessToken"])

	status, body = doJSON(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))

	status, body = doJSON(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "nobody@example.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))
}

func TestRefreshEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/auth/register", registerPayload("alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, status)
	d := data(t, body)
	accessToken := d["accessToken"].(string)
	refreshToken := d["refreshToken"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/auth/refresh-token",
		map[string]string{"refreshToken": refreshToken}, nil)
	require.Equal(t, http.StatusOK, status)
	refreshed := data(t, body)
	assert.NotEmpty(t, refreshed["accessToken"])
	// Refresh never rotates the refresh token.
	_, rotated := refreshed["refreshToken"]
	assert.False(t, rotated)

	status, body = doJSON(t, app, http.MethodPost, "/auth/refresh-token",
		map[string]string{"refreshToken": accessToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, body))
}

func TestMeEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/auth/register", registerPayload("alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, status)
	accessToken := data(t, body)["accessToken"].(string)

	status, body = doJSON(t, app, http.MethodGet, "/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + accessToken})
	require.Equal(t, http.StatusOK, status)
	me := data(t, body)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, "CUSTOMER", me["role"])

	status, _ = doJSON(t, app, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
