package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "config-test-secret-0123456789"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("REGISTRAR_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	want := Defaults()
	want.Auth.JWTSecret = testSecret
	assert.Equal(t, want, *cfg)
}

func TestLoad_MissingSecret(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRAR_AUTH_JWT_SECRET")

	assert.NoError(t, cfg.ValidateStorage(), "migrate and seed do not need a secret")
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  shutdown_timeout: 5s
database:
  driver: postgres
  dsn: postgres://localhost/registration
auth:
  jwt_secret: `+testSecret+`
  token_ttl: 30m
  bcrypt_cost: 10
  cookie_secure: true
catalog:
  seed_on_start: false
  cache_ttl: 0s
log:
  level: debug
  format: json
tracing:
  enabled: true
  exporter: otlp
  otlp_endpoint: collector:4318
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/registration", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.False(t, cfg.Catalog.SeedOnStart)
	assert.Zero(t, cfg.Catalog.CacheTTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, "collector:4318", cfg.Tracing.OTLPEndpoint)
	assert.Equal(t, "course-registration", cfg.Tracing.ServiceName)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  dsn: from-file.db
auth:
  jwt_secret: `+testSecret+`
`)
	t.Setenv("REGISTRAR_SERVER_PORT", "7070")
	t.Setenv("REGISTRAR_DATABASE_DSN", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	require.NoError(t, flags.Parse([]string{"--port", "6060"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port, "flag beats env and file")
	assert.Equal(t, "from-env.db", cfg.Database.DSN, "env beats file")
}

func TestLoad_UnsetFlagDoesNotOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\nauth:\n  jwt_secret: "+testSecret+"\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth.jwt_secret"},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "auth.token_ttl"},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 40 }, "auth.bcrypt_cost"},
		{"negative cache ttl", func(c *Config) { c.Catalog.CacheTTL = -time.Second }, "catalog.cache_ttl"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Auth.JWTSecret = testSecret
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStorage_IgnoresAuth(t *testing.T) {
	cfg := Defaults()
	cfg.Database.Driver = "mysql"

	err := cfg.ValidateStorage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.NotContains(t, err.Error(), "jwt_secret")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)

	_, err = LogConfig{Level: "nope", Format: "text"}.NewLogger(&buf)
	assert.Error(t, err)
}
