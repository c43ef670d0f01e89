package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	LoginLimiter LoginLimiterConfig
	Secrets      SecretsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters. Token lifetimes are fixed by
// the auth package and are not configurable.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	BcryptCost    int
	CookieName    string
	CookieDomain  string
	CookieSecure  bool
}

// LoginLimiterConfig bounds failed login attempts per email.
type LoginLimiterConfig struct {
	Enabled       bool
	MaxAttempts   int
	WindowSeconds int
}

// SecretsConfig selects where signing secrets are read from.
type SecretsConfig struct {
	Source           string
	KeyVaultURL      string
	CacheTTLSeconds  int
	LookupTimeoutSec int
}

const (
	SecretSourceEnv           = "env"
	SecretSourceAzureKeyVault = "azure-keyvault"

	accessSecretKey  = "AUTH_ACCESS_SECRET"
	refreshSecretKey = "AUTH_REFRESH_SECRET"
)

// providerFactory is swapped in tests.
var providerFactory = NewSecretProvider

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "talent-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Auth: AuthConfig{
			BcryptCost:   getEnvAsInt("AUTH_BCRYPT_COST", 10),
			CookieName:   getEnv("AUTH_REFRESH_COOKIE_NAME", "refresh_token"),
			CookieDomain: os.Getenv("AUTH_REFRESH_COOKIE_DOMAIN"),
			CookieSecure: getEnvAsBool("AUTH_REFRESH_COOKIE_SECURE", true),
		},
		LoginLimiter: LoginLimiterConfig{
			Enabled:       getEnvAsBool("LOGIN_LIMITER_ENABLED", true),
			MaxAttempts:   getEnvAsInt("LOGIN_LIMITER_MAX_ATTEMPTS", 10),
			WindowSeconds: getEnvAsInt("LOGIN_LIMITER_WINDOW_SECONDS", 900),
		},
		Secrets: SecretsConfig{
			Source:           getEnv("CONFIG_SOURCE", SecretSourceEnv),
			KeyVaultURL:      os.Getenv("AZURE_KEYVAULT_URL"),
			CacheTTLSeconds:  getEnvAsInt("SECRETS_CACHE_TTL_SECONDS", 300),
			LookupTimeoutSec: getEnvAsInt("SECRETS_LOOKUP_TIMEOUT_SECONDS", 10),
		},
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolveSecrets() error {
	provider, err := providerFactory(c.Secrets)
	if err != nil {
		return fmt.Errorf("secret provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Secrets.LookupTimeout())
	defer cancel()

	if c.Auth.AccessSecret, err = provider.Get(ctx, accessSecretKey); err != nil {
		return fmt.Errorf("resolve %s: %w", accessSecretKey, err)
	}
	if c.Auth.RefreshSecret, err = provider.Get(ctx, refreshSecretKey); err != nil {
		return fmt.Errorf("resolve %s: %w", refreshSecretKey, err)
	}
	return nil
}

// Validate checks invariants that would otherwise surface as runtime auth bugs.
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return errors.New("config: AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must be set")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.CookieName == "" {
		return errors.New("config: AUTH_REFRESH_COOKIE_NAME must not be empty")
	}
	if c.LoginLimiter.Enabled && (c.LoginLimiter.MaxAttempts <= 0 || c.LoginLimiter.WindowSeconds <= 0) {
		return errors.New("config: login limiter attempts and window must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Window returns the limiter window as a duration.
func (l LoginLimiterConfig) Window() time.Duration {
	return time.Duration(l.WindowSeconds) * time.Second
}

// LookupTimeout bounds a single secret lookup; defaults to 10s.
func (s SecretsConfig) LookupTimeout() time.Duration {
	if s.LookupTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.LookupTimeoutSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
