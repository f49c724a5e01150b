package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackerc/linkhub/internal/auth"
	"github.com/hackerc/linkhub/internal/model"
	"github.com/hackerc/linkhub/internal/repository/sqlite"
	"github.com/hackerc/linkhub/internal/service"
)

// testStack is a real router over a temp SQLite database: handlers, auth
// middleware and services wired exactly as the server does it, minus OAuth
// and the network.
type testStack struct {
	router *chi.Mux
	tokens *auth.TokenService
	auth   *service.AuthService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	users := db.Users()
	categories := db.Categories()
	bookmarks := db.Bookmarks()

	authService := service.NewAuthService(users, tokens, auth.NewPasswordServiceForTest(4), logger)
	categoryService := service.NewCategoryService(categories, logger)
	bookmarkService := service.NewBookmarkService(bookmarks, categories, logger)
	shareService := service.NewShareService(users, categories, bookmarks, logger)

	authHandler := NewAuthHandler(authService, nil, logger)
	categoryHandler := NewCategoryHandler(categoryService, logger)
	bookmarkHandler := NewBookmarkHandler(bookmarkService, logger)
	shareHandler := NewShareHandler(shareService, logger)

	router := chi.NewRouter()
	router.Post("/auth/register", authHandler.HandleRegister)
	router.Post("/auth/login", authHandler.HandleLogin)
	router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/me", authHandler.HandleMe)
		r.Get("/categories", categoryHandler.HandleTree)
		r.Post("/categories", categoryHandler.HandleCreate)
		r.Put("/categories/{id}", categoryHandler.HandleUpdate)
		r.Delete("/categories/{id}", categoryHandler.HandleDelete)
		r.Post("/categories/{id}/toggle", categoryHandler.HandleToggle)
		r.Get("/bookmarks", bookmarkHandler.HandleList)
		r.Post("/bookmarks", bookmarkHandler.HandleCreate)
	})
	router.Route("/share", func(r chi.Router) {
		r.Get("/{username}", shareHandler.HandleListPublic)
		r.Get("/{username}/{ref}", shareHandler.HandleResolve)
		r.Get("/{username}/{ref}/bookmarks", shareHandler.HandleBookmarks)
	})

	return &testStack{router: router, tokens: tokens, auth: authService}
}

// register creates a user through the service and returns a session cookie.
func (s *testStack) register(t *testing.T, username string) *http.Cookie {
	t.Helper()
	result, err := s.auth.Register(t.Context(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	return &http.Cookie{Name: "token", Value: result.Token}
}

// do runs one request through the router, JSON-encoding body when non-nil.
func (s *testStack) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// =========================================================================
// AUTH GATE
// =========================================================================

func TestAPI_RequiresAuth(t *testing.T) {
	s := newTestStack(t)

	rec := s.do(t, http.MethodGet, "/api/categories", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =========================================================================
// CATEGORY TREE
// =========================================================================

func TestCategories_CreateAndTree(t *testing.T) {
	s := newTestStack(t)
	cookie := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Reading"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	root := decode[model.TreeCategory](t, rec)
	assert.Equal(t, "Reading", root.Name)
	assert.Equal(t, int64(1), root.ShortID)

	// A child under it.
	rec = s.do(t, http.MethodPost, "/api/categories",
		map[string]any{"name": "Go", "parentId": root.ID}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/categories", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	tree := decode[[]model.TreeCategory](t, rec)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].SubCategories, 1)
	assert.Equal(t, "Go", tree[0].SubCategories[0].Name)
	assert.Equal(t, 1, tree[0].ItemCount)
}

func TestCategories_CreateValidationError(t *testing.T) {
	s := newTestStack(t)
	cookie := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "   "}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", errResp.Error)
}

func TestCategories_DeleteCascades(t *testing.T) {
	s := newTestStack(t)
	cookie := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "root"}, cookie)
	root := decode[model.TreeCategory](t, rec)
	s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "child", "parentId": root.ID}, cookie)

	rec = s.do(t, http.MethodDelete, "/api/categories/"+root.ID, nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/categories", nil, cookie)
	tree := decode[[]model.TreeCategory](t, rec)
	assert.Empty(t, tree)
}

func TestCategories_Toggle(t *testing.T) {
	s := newTestStack(t)
	cookie := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "a"}, cookie)
	created := decode[model.TreeCategory](t, rec)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/categories/%s/toggle", created.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	tree := decode[[]model.TreeCategory](t, rec)
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsSubMenuOpen)
}

func TestCategories_UsersAreIsolated(t *testing.T) {
	s := newTestStack(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "alices"}, alice)
	created := decode[model.TreeCategory](t, rec)

	// Bob can't see it, update it, or delete it.
	rec = s.do(t, http.MethodGet, "/api/categories", nil, bob)
	assert.Empty(t, decode[[]model.TreeCategory](t, rec))

	rec = s.do(t, http.MethodDelete, "/api/categories/"+created.ID, nil, bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =========================================================================
// SHARE
// =========================================================================

func TestShareRoutes(t *testing.T) {
	s := newTestStack(t)
	cookie := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/categories",
		map[string]any{"name": "Public Stuff", "isPublic": true}, cookie)
	pub := decode[model.TreeCategory](t, rec)

	s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Private Stuff"}, cookie)

	rec = s.do(t, http.MethodPost, "/api/bookmarks",
		map[string]any{"title": "shared", "url": "https://go.dev", "categoryId": pub.ID}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Anonymous listing shows only the public category.
	rec = s.do(t, http.MethodGet, "/share/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]model.Category](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "Public Stuff", listed[0].Name)

	// Resolve by short id and fetch the bookmarks.
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/share/alice/%d", pub.ShortID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/share/alice/%d/bookmarks", pub.ShortID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bookmarks := decode[[]model.Bookmark](t, rec)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "shared", bookmarks[0].Title)
}

func TestShare_PrivateIs404(t *testing.T) {
	s := newTestStack(t)
	cookie := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "secret"}, cookie)
	priv := decode[model.TreeCategory](t, rec)

	rec = s.do(t, http.MethodGet, "/share/alice/"+priv.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/share/alice/%d", priv.ShortID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
