package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/web/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "127.0.0.1", cfg.DB.Host)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "www-data", cfg.DB.User)
	assert.Equal(t, "awesome", cfg.DB.Database)
	require.NotNil(t, cfg.DB.Autocommit)
	assert.True(t, *cfg.DB.Autocommit)
	assert.Equal(t, "Awesome", cfg.Session.Secret)
}

func TestLoad_override_file(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "override.yaml", `
server:
  addr: ":8080"
db:
  host: db.internal
  autocommit: false
  unknown: dropped
session: not-a-map
extra:
  ignored: true
`)

	cfg, err := config.Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "static", cfg.Server.StaticDir)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "www-data", cfg.DB.Password)
	require.NotNil(t, cfg.DB.Autocommit)
	assert.False(t, *cfg.DB.Autocommit)
	assert.Equal(t, "Awesome", cfg.Session.Secret)
}

func TestLoad_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		path string
	}{
		"missing file": {path: filepath.Join(t.TempDir(), "nope.yaml")},
		"invalid yaml": {path: writeFile(t, "bad.yaml", "server: [")},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(tc.path, filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

// Environment tests mutate the process environment and cannot run in parallel.

func TestLoad_env(t *testing.T) {
	t.Setenv("AWESOME_ADDR", ":7000")
	t.Setenv("AWESOME_TIMEOUT", "5s")
	t.Setenv("AWESOME_DB_HOST", "from-env")
	t.Setenv("AWESOME_DB_PORT", "3307")
	t.Setenv("AWESOME_SESSION_SECRET", "s3cret")

	cfg, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "from-env", cfg.DB.Host)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
}

func TestLoad_env_file(t *testing.T) {
	// Registered with t.Setenv so the values are restored after the test.
	t.Setenv("AWESOME_DB_USER", "")
	t.Setenv("AWESOME_DB_DATABASE", "")
	require.NoError(t, os.Unsetenv("AWESOME_DB_USER"))
	require.NoError(t, os.Unsetenv("AWESOME_DB_DATABASE"))
	t.Setenv("AWESOME_DB_PASSWORD", "process-wins")

	envFile := writeFile(t, "test.env", "AWESOME_DB_USER=blog\nAWESOME_DB_DATABASE=blogdb\nAWESOME_DB_PASSWORD=file-loses\n")

	cfg, err := config.Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "blog", cfg.DB.User)
	assert.Equal(t, "blogdb", cfg.DB.Database)
	assert.Equal(t, "process-wins", cfg.DB.Password)
}

func TestLoad_env_invalid(t *testing.T) {
	t.Setenv("AWESOME_DB_PORT", "three")

	_, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
