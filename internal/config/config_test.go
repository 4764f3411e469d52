package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackvision/portal-web/internal/config"
)

func TestEnvVars_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("API_URL", "")
	t.Setenv("STORAGE_BACKEND", "")

	c := config.New()
	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://127.0.0.1:8000/", c.GetAPIBaseURL())
	require.Equal(t, config.StorageBackendMemory, c.GetStorageBackend())
	require.False(t, c.GetSecureCookies())
}

func TestEnvVars_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")
	t.Setenv("API_URL", "https://api.example.com/v1")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "4")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "PROD", c.GetEnv())
	require.True(t, c.GetSecureCookies())
	require.Equal(t, "https://api.example.com/v1/", c.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, c.GetAPITimeout())
	require.Equal(t, config.StorageBackendRedis, c.GetStorageBackend())
	require.Equal(t, 4, c.GetRedisDB())
}

func TestEnvVars_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "etcd")
	t.Setenv("REDIS_DB", "four")
	t.Setenv("API_TIMEOUT", "soon")

	c := config.New()
	require.Equal(t, config.StorageBackendMemory, c.GetStorageBackend())
	require.Equal(t, 0, c.GetRedisDB())
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
}

func TestCors_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,,")

	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin(""))
	require.Len(t, origins, 2)
}

func TestLoadFile(t *testing.T) {
	t.Cleanup(config.ResetFile)
	t.Setenv("API_URL", "")
	t.Setenv("REDIS_DB", "")

	path := filepath.Join(t.TempDir(), "portal.yml")
	err := os.WriteFile(path, []byte("API_URL: https://file.example.com\nREDIS_DB: 2\nAPP_NAME: Portal\n"), 0o600)
	require.NoError(t, err)
	require.NoError(t, config.LoadFile(path))

	c := config.New()
	require.Equal(t, "https://file.example.com/", c.GetAPIBaseURL())
	require.Equal(t, 2, c.GetRedisDB())

	t.Run("env takes precedence", func(t *testing.T) {
		t.Setenv("APP_NAME", "FromEnv")
		require.Equal(t, "FromEnv", c.GetAppName())
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yml"))
		require.Error(t, err)
	})
}
