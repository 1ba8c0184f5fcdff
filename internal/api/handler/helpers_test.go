package handler_test

import (
	"bytes"
	"civicdesk/backend/internal/api"
	"civicdesk/backend/internal/api/handler"
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/feed"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/storage/storagetest"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const frontendURL = "http://localhost:3000"

type testEnv struct {
	router *gin.Engine
	store  *storage.Service
	tokens *auth.TokenManager
	hub    *feed.ManagerService
}

type envOption func(*handler.Deps, *bool)

func withStrictTransitions() envOption {
	return func(_ *handler.Deps, strict *bool) { *strict = true }
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storagetest.NewService(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	hub := feed.NewManagerService(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	deps := handler.Deps{
		Store:       store,
		Tokens:      tokens,
		Hub:         hub,
		Logger:      zap.NewNop(),
		FrontendURL: frontendURL,
	}
	strict := false
	for _, opt := range opts {
		opt(&deps, &strict)
	}
	deps.Complaints = complaint.NewService(store, hub, nil, strict)

	h := handler.NewHandler(deps)
	authn := middleware.NewAuthenticator(tokens, store, nil)
	return &testEnv{
		router: api.NewRouter(h, authn, frontendURL, zap.NewNop()),
		store:  store,
		tokens: tokens,
		hub:    hub,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// user creates a stored user with the given role and returns it with a token.
func (e *testEnv) user(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{Name: "Test " + role, Email: email, Password: "password123", Role: role}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	token, err := e.tokens.Issue(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) complaint(t *testing.T, status string, submittedBy *string) *models.Complaint {
	t.Helper()
	c := &models.Complaint{
		Title:       "Seeded complaint",
		Description: "A complaint created directly in the store",
		Category:    "Roads",
		Status:      status,
		Email:       "seed@example.com",
		SubmittedBy: submittedBy,
	}
	require.NoError(t, e.store.CreateComplaint(context.Background(), c))
	return c
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

func (b errorBody) fields() []string {
	out := make([]string, 0, len(b.Errors))
	for _, e := range b.Errors {
		out = append(out, e.Field)
	}
	return out
}
