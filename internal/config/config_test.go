package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML под текущую структуру config.go.
const sampleYAML = `
env: "prod"
api:
  base_url: "https://rental.example.com/api"
  timeout: "3s"
auth:
  early_refresh_margin: "30s"
storage:
  backend: "redis"
  redis_url: "redis://10.0.0.1:6379/1"
  redis_prefix: "sf:"
stub:
  host: "127.0.0.1"
  port: "8181"
  jwt_secret: "secret"
  access_ttl: "1m"
`

// Минимальный YAML (всё остальное — через дефолты/ENV).
const minimalYAML = `
env: "stage"
`

// Некорректный YAML для проверки сообщений об ошибке.
const brokenYAML = `
env: [unclosed
`

func TestStubConfig_Addr(t *testing.T) {
	t.Parallel()

	cfg := StubConfig{Host: "127.0.0.1", Port: "8181", MetricsHost: "0.0.0.0", MetricsPort: "9090"}
	require.Equal(t, "127.0.0.1:8181", cfg.Addr())
	require.Equal(t, "0.0.0.0:9090", cfg.MetricsAddr())
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://rental.example.com/api", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, 30*time.Second, cfg.Auth.EarlyRefreshMargin)

	require.Equal(t, "redis", cfg.Storage.Backend)
	require.Equal(t, "redis://10.0.0.1:6379/1", cfg.Storage.RedisURL)
	require.Equal(t, "sf:", cfg.Storage.RedisPrefix)

	require.Equal(t, "127.0.0.1", cfg.Stub.Host)
	require.Equal(t, "8181", cfg.Stub.Port)
	require.Equal(t, time.Minute, cfg.Stub.AccessTTL)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "minimal.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "stage", cfg.Env)
	require.Equal(t, 15*time.Second, cfg.Auth.EarlyRefreshMargin)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, "credentials.json", cfg.Storage.Path)
	require.Equal(t, 15*time.Minute, cfg.Stub.AccessTTL)
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_WithExplicitPath_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_EnvOverlay(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
	t.Setenv("API_BASE_URL", "https://override.example.com")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "https://override.example.com", cfg.API.BaseURL)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
