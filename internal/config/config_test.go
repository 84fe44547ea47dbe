package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vetlab/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, storage.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.AlertInterval)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.Storage.PostgresDSN, "sslmode=disable")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=9000\nSTORAGE_DRIVER=sqlite\nCACHE_TTL=1m\n"), 0o600))

	// godotenv writes into the process environment; undo what the file adds.
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("STORAGE_DRIVER")
	})
	// variables already present are not overridden by the file
	t.Setenv("CACHE_TTL", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "floppy")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")
	_, err = Load("")
	assert.Error(t, err)
}

func TestReleaseRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Release())
}
