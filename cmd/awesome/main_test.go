package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/web"
	"github.com/bjaus/web/config"
	"github.com/bjaus/web/db"
	"github.com/bjaus/web/internal/blog"
)

func TestNewRouter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, err := db.Open(ctx, db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "awesome.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, blog.CreateTables(ctx, pool))

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Server.StaticDir = t.TempDir()

	r, err := newRouter(cfg, blog.NewStore(pool))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /{$}",
		"GET /api/users",
		"POST /api/users",
		"GET /api/users/{id}",
		"POST /api/authenticate",
		"GET /api/me",
		"GET /api/blogs/{id}",
		"POST /api/blogs",
		"DELETE /api/blogs/{id}",
	}, r.Routes())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(web.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
