package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	Auth       AuthConfig
	Pagination PaginationConfig
	Store      StoreConfig
	Seed       SeedConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Env             string
	Debug           bool
}

// IsDevelopment reports whether the server runs in a development environment.
func (c ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
}

// PaginationConfig holds the page size policy of list endpoints.
type PaginationConfig struct {
	PageSize    int
	MaxPageSize int
}

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string
}

// SeedConfig holds the admin account created by seeding. The in-process
// store is seeded on start so the API is usable without a database.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// DefaultJWTSecret is the signing key used when JWT_SECRET is unset. It is
// only accepted in development.
const DefaultJWTSecret = "change-me-in-production"

// ErrInsecureJWTSecret is returned by Validate when a non-development
// environment would sign tokens with an empty or publicly known key.
var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set outside development")

// Validate rejects settings that are unsafe for the configured environment.
func (c *Config) Validate() error {
	if c.Server.IsDevelopment() {
		return nil
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == DefaultJWTSecret {
		return ErrInsecureJWTSecret
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			Env:             getEnv("APP_ENV", "development"),
			Debug:           getBoolEnv("DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ride_info"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "ride-info-api"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", time.Hour),
		},
		Pagination: PaginationConfig{
			PageSize:    getIntEnv("PAGE_SIZE", 10),
			MaxPageSize: getIntEnv("MAX_PAGE_SIZE", 100),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StorePostgres),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
