package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no .env is picked up.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "trust", cfg.Session.RestoreMode)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.False(t, cfg.Session.LogoutOnAuthFailure)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("API_BASE_URL", "https://hr.example.com/api")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("STORAGE_TYPE", "SQLite")
	t.Setenv("SESSION_RESTORE_MODE", "expiry")
	t.Setenv("LOGOUT_ON_AUTH_FAILURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "https://hr.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "expiry", cfg.Session.RestoreMode)
	assert.True(t, cfg.Session.LogoutOnAuthFailure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile(".env", []byte("APP_PORT=7070\nSTORAGE_TYPE=memory\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("APP_PORT")
		os.Unsetenv("STORAGE_TYPE")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, "memory", cfg.Storage.Type)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "APP_PORT", "http"},
		{"timeout", "API_TIMEOUT", "soon"},
		{"storage type", "STORAGE_TYPE", "floppy"},
		{"restore mode", "SESSION_RESTORE_MODE", "verify"},
		{"sweep interval", "SESSION_SWEEP_INTERVAL", "often"},
		{"auth failure flag", "LOGOUT_ON_AUTH_FAILURE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_PostgresNeedsPassword(t *testing.T) {
	cfg := &Config{
		API:     APIConfig{BaseURL: "http://x", Timeout: time.Second},
		Storage: StorageConfig{Type: "postgres"},
		Session: SessionConfig{RestoreMode: "trust"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Password = "secret"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres://:secret@:0/?sslmode=", cfg.DatabaseURL())
}
