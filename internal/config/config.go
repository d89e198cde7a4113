package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Seed      SeedConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Driver   string
	Migrate  bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	CORSOrigins []string
}

type RateLimitConfig struct {
	LoginMaxAttempts   int
	LoginBlockDuration time.Duration
}

type AuthConfig struct {
	ResetCodeTTL time.Duration
}

// SeedConfig provisions a first tenant and administrator at startup when
// AdminEmail is set.
type SeedConfig struct {
	TenantName    string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func (s SeedConfig) Enabled() bool {
	return s.AdminEmail != ""
}

func Load() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	migrate, err := strconv.ParseBool(getEnv("DB_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hr"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		Migrate:  migrate,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	maxAttempts, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}
	blockDuration, err := time.ParseDuration(getEnv("LOGIN_BLOCK_DURATION", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_BLOCK_DURATION: %w", err)
	}
	config.RateLimit = RateLimitConfig{
		LoginMaxAttempts:   maxAttempts,
		LoginBlockDuration: blockDuration,
	}

	resetTTL, err := time.ParseDuration(getEnv("RESET_CODE_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_CODE_TTL: %w", err)
	}
	config.Auth = AuthConfig{ResetCodeTTL: resetTTL}

	config.Seed = SeedConfig{
		TenantName:    getEnv("SEED_TENANT_NAME", "Default"),
		AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	switch c.Database.Driver {
	case StorageDriverPostgres:
		if c.Database.URL == "" && c.Database.Password == "" {
			return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.Database.Driver)
	}
	if c.Seed.Enabled() && len(c.Seed.AdminPassword) < 6 {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least 6 characters")
	}
	if c.RateLimit.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
