// config - источник загрузки конфигурации storefront-клиента и stub-API.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Stub    StubConfig    `yaml:"stub"`
}

// APIConfig — удалённый rental-API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout"  env:"API_TIMEOUT"  env-default:"15s"`
}

// AuthConfig — поведение токен-конвейера клиента.
type AuthConfig struct {
	// EarlyRefreshMargin — запас до exp, при котором access-токен
	// обновляется упреждающе.
	EarlyRefreshMargin time.Duration `yaml:"early_refresh_margin" env:"AUTH_EARLY_REFRESH_MARGIN" env-default:"15s"`
}

// StorageConfig — durable хранилище refresh-токена.
type StorageConfig struct {
	// Backend: "file" или "redis".
	Backend     string `yaml:"backend"      env:"STORAGE_BACKEND"      env-default:"file"`
	Path        string `yaml:"path"         env:"STORAGE_PATH"         env-default:"credentials.json"`
	RedisURL    string `yaml:"redis_url"    env:"STORAGE_REDIS_URL"    env-default:"redis://localhost:6379/0"`
	RedisPrefix string `yaml:"redis_prefix" env:"STORAGE_REDIS_PREFIX" env-default:"storefront:"`
}

// StubConfig — локальный stub rental-API.
type StubConfig struct {
	Host        string        `yaml:"host"         env:"STUB_HOST"         env-default:"0.0.0.0"`
	Port        string        `yaml:"port"         env:"STUB_PORT"         env-default:"8080"`
	MetricsHost string        `yaml:"metrics_host" env:"STUB_METRICS_HOST" env-default:"0.0.0.0"`
	MetricsPort string        `yaml:"metrics_port" env:"STUB_METRICS_PORT" env-default:"8085"`
	JWTSecret   string        `yaml:"jwt_secret"   env:"STUB_JWT_SECRET"   env-default:"stub-secret"`
	AccessTTL   time.Duration `yaml:"access_ttl"   env:"STUB_ACCESS_TTL"   env-default:"15m"`
	RefreshTTL  time.Duration `yaml:"refresh_ttl"  env:"STUB_REFRESH_TTL"  env-default:"720h"`
}

func (s StubConfig) Addr() string        { return net.JoinHostPort(s.Host, s.Port) }
func (s StubConfig) MetricsAddr() string { return net.JoinHostPort(s.MetricsHost, s.MetricsPort) }

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}
