package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COLORSTUDIO_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int64(200), cfg.Generation.UnitCostCents)
	assert.Equal(t, 1, cfg.Generation.InitialFreeGenerations)
	assert.Equal(t, 60*time.Second, cfg.Generation.ProviderTimeout)
	assert.Equal(t, 10<<20, cfg.Generation.MaxImageBytes)
	assert.Equal(t, time.Minute, cfg.Generation.StaleSweepInterval)
	assert.Zero(t, cfg.Generation.StaleAfter)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Provider.BaseURL)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COLORSTUDIO_JWT_SECRET", "secret")
	t.Setenv("COLORSTUDIO_GENERATION_UNIT_COST_CENTS", "350")
	t.Setenv("COLORSTUDIO_GENERATION_INITIAL_FREE_GENERATIONS", "3")
	t.Setenv("COLORSTUDIO_DATABASE_DRIVER", "memory")
	t.Setenv("COLORSTUDIO_PROVIDER_API_KEY", "sk-live")
	t.Setenv("COLORSTUDIO_ADMIN_USER_IDS", " a , b,,c ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(350), cfg.Generation.UnitCostCents)
	assert.Equal(t, 3, cfg.Generation.InitialFreeGenerations)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "sk-live", cfg.Provider.APIKey)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.AccessControl.AdminUserIDs)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:   DatabaseConfig{Driver: "memory"},
			Auth:       AuthConfig{JWTSecret: "secret"},
			Generation: GenerationConfig{UnitCostCents: 200, InitialFreeGenerations: 1, ProviderTimeout: time.Minute},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero unit cost", func(c *Config) { c.Generation.UnitCostCents = 0 }},
		{"negative free quota", func(c *Config) { c.Generation.InitialFreeGenerations = -1 }},
		{"no provider timeout", func(c *Config) { c.Generation.ProviderTimeout = 0 }},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "app", Database: "colorstudio", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=app dbname=colorstudio sslmode=disable", cfg.DSN())

	cfg.Password = "pw"
	assert.Contains(t, cfg.DSN(), "password=pw")
}
