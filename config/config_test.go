package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenExpiry)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.AllowAdminSignup)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, cfg.Database.DSN(), "dbname=")
}

func TestLoad_DatabaseURLOverridesFields(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/stores?sslmode=require")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/stores?sslmode=require", cfg.Database.DSN())
}

func TestLoad_ClientURLFallback(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("CLIENT_URL", "https://ratethestore.example, https://admin.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://ratethestore.example", "https://admin.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Environment: "development"},
			JWT:    JWTConfig{Secret: "secret", TokenExpiry: time.Hour},
			Auth:   AuthConfig{BcryptCost: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "Empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "Default secret in production", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.JWT.Secret = "your-secret-key"
		}, wantErr: true},
		{name: "Zero expiry", mutate: func(c *Config) { c.JWT.TokenExpiry = 0 }, wantErr: true},
		{name: "Bcrypt cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 40 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
