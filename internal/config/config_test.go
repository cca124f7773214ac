package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "5m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "access-secret", cfg.AccessTokenSecret)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, RotationSingle, cfg.RefreshRotation)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())
}

func TestLoad_RejectsWildcardOrigin(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("CORS_ORIGIN", "*")

	_, err := Load()
	assert.ErrorContains(t, err, "CORS_ORIGIN")
}

func TestConfig_AllowedOrigins(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		expect []string
	}{
		{name: "empty", value: "", expect: nil},
		{name: "single", value: "https://app.example.com", expect: []string{"https://app.example.com"}},
		{name: "list with spaces and slashes", value: " https://app.example.com/, ,https://admin.example.com", expect: []string{"https://app.example.com", "https://admin.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{CORSOrigin: tt.value}
			assert.Equal(t, tt.expect, cfg.AllowedOrigins())
		})
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "soon")
	t.Setenv("REDIS_DB", "two")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AccessTokenSecret:  "a",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenSecret: "r",
			RefreshTokenExpiry: time.Hour,
			RefreshRotation:    RotationSingle,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "redis rotation", mutate: func(c *Config) { c.RefreshRotation = RotationRedis }},
		{name: "missing access secret", mutate: func(c *Config) { c.AccessTokenSecret = "" }, wantErr: true},
		{name: "missing refresh secret", mutate: func(c *Config) { c.RefreshTokenSecret = "" }, wantErr: true},
		{name: "shared secret", mutate: func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }, wantErr: true},
		{name: "zero expiry", mutate: func(c *Config) { c.AccessTokenExpiry = 0 }, wantErr: true},
		{name: "unknown rotation", mutate: func(c *Config) { c.RefreshRotation = "family" }, wantErr: true},
		{name: "explicit origins", mutate: func(c *Config) { c.CORSOrigin = "https://app.example.com,https://admin.example.com" }},
		{name: "wildcard origin", mutate: func(c *Config) { c.CORSOrigin = "*" }, wantErr: true},
		{name: "wildcard among origins", mutate: func(c *Config) { c.CORSOrigin = "https://app.example.com, *" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
