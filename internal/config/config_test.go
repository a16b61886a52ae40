package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Pagination.PageSize != 10 || cfg.Pagination.MaxPageSize != 100 {
		t.Errorf("unexpected pagination defaults: %+v", cfg.Pagination)
	}
	if cfg.Store.Backend != StorePostgres {
		t.Errorf("expected postgres backend, got %s", cfg.Store.Backend)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("expected 1h token TTL, got %v", cfg.Auth.AccessTokenTTL)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("MAX_PAGE_SIZE", "not-a-number")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("STORE_BACKEND", StoreMemory)

	cfg := Load()

	if cfg.Server.Port != "9000" || !cfg.Server.Debug {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Pagination.PageSize != 25 {
		t.Errorf("expected page size 25, got %d", cfg.Pagination.PageSize)
	}
	if cfg.Pagination.MaxPageSize != 100 {
		t.Errorf("expected malformed value to fall back to 100, got %d", cfg.Pagination.MaxPageSize)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected 15m, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis disabled")
	}
	if cfg.Store.Backend != StoreMemory {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ride_info", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=ride_info sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestValidate_JWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{"development default", "development", "", false},
		{"production default", "production", "", true},
		{"production placeholder", "production", DefaultJWTSecret, true},
		{"production custom", "production", "a-real-secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("JWT_SECRET", tt.secret)

			err := Load().Validate()
			if tt.wantErr && !errors.Is(err, ErrInsecureJWTSecret) {
				t.Errorf("expected ErrInsecureJWTSecret, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
