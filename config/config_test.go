package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ghostpass", cfg.Database.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "@every 1m", cfg.Jobs.PassExpirySchedule)
	assert.Equal(t, 10*time.Second, cfg.Providers.Payment.Timeout)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
database:
  dbname: ghostpass_test
gateway:
  keys:
    "9b7f8e2a-0000-0000-0000-000000000001": "gw-secret-1"
providers:
  payment:
    base_url: https://pay.example.com
    webhook_secret: whsec_test
jobs:
  pass_expiry_schedule: "@every 30s"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "ghostpass_test", cfg.Database.DBName)
	assert.Equal(t, "gw-secret-1", cfg.Gateway.Keys["9b7f8e2a-0000-0000-0000-000000000001"])
	assert.Equal(t, "https://pay.example.com", cfg.Providers.Payment.BaseURL)
	assert.Equal(t, "whsec_test", cfg.Providers.Payment.WebhookSecret)
	assert.Equal(t, "@every 30s", cfg.Jobs.PassExpirySchedule)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GHOSTPASS_SERVER_PORT", "7070")
	t.Setenv("GHOSTPASS_JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5433, User: "gp", Password: "pw",
		DBName: "ghostpass", SSLMode: "require",
	}
	assert.Equal(t, "postgres://gp:pw@db:5433/ghostpass?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
