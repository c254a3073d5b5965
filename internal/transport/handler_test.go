package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/database"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testStack struct {
	router http.Handler
	db     *database.Database
	tokens *auth.TokenManager
}

// newTestStack wires every handler against a fresh seeded SQLite database.
// admins is passed straight to RequireAdmin.
func newTestStack(t *testing.T, admins ...string) *testStack {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Initialize(ctx, zap.NewNop()))

	logger := zap.NewNop()
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	authn := middleware.NewAuthenticator(tokens, logger)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)

	router := chi.NewRouter()
	NewAuthHandler(service.NewUserService(userRepo, tokens), logger).RegisterRoutes(router, authn, nil)
	NewProductHandler(productRepo, repository.NewCategoryRepository(db), logger).RegisterRoutes(router, authn)
	NewAdminHandler(userRepo, productRepo, service.NewAdminService(db), logger).RegisterRoutes(router, authn, admins)

	return &testStack{router: router, db: db, tokens: tokens}
}

func (s *testStack) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token
func (s *testStack) register(t *testing.T, username, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data service.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}
