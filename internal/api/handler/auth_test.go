package handler_test

import (
	"civicdesk/backend/internal/models"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

func TestRegister_ForcesCitizenRole(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Mallory", "email": "mallory@example.com", "password": "password123", "role": "admin",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[authResponse](t, w)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "citizen", resp.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	stored, err := env.store.GetUserByEmail(context.Background(), "mallory@example.com")
	require.NoError(t, err)
	assert.Equal(t, "citizen", stored.Role)
	assert.NotEqual(t, "password123", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newEnv(t)
	body := map[string]any{"name": "Jane", "email": "jane@example.com", "password": "password123"}

	first := env.do(t, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, first.Code)

	body["email"] = "JANE@example.com"
	second := env.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "User already exists", decode[errorBody](t, second).Message)

	count, err := env.store.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegister_Validation(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "J", "email": "nope", "password": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "Validation failed", body.Message)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, body.fields())

	w = env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "   J   ", "email": "j@example.com", "password": "1234567",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"name", "password"}, decode[errorBody](t, w).fields())

	w = env.do(t, http.MethodPost, "/api/auth/register", `{"name":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"body"}, decode[errorBody](t, w).fields())
}

func TestLogin(t *testing.T) {
	env := newEnv(t)
	user, _ := env.user(t, "jane@example.com", "citizen")

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "jane@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[authResponse](t, w)

	claims, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "citizen", claims.Role)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogin_Failures(t *testing.T) {
	env := newEnv(t)
	env.user(t, "jane@example.com", "citizen")

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "jane@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token")

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ghost@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode[errorBody](t, w).Message)
}

func TestMe_AndUpdateProfile(t *testing.T) {
	env := newEnv(t)
	user, token := env.user(t, "jane@example.com", "citizen")

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, decode[models.User](t, w).ID)

	w = env.do(t, http.MethodPut, "/api/users/me", map[string]any{"name": "Jane Doe", "address": "1 Elm St"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.User](t, w)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "1 Elm St", updated.Address)
	assert.Equal(t, "citizen", updated.Role)

	stored, err := env.store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.Name)
	assert.True(t, stored.CheckPassword("password123"))

	w = env.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
