// Package config loads the service configuration.
//
// Sources, lowest precedence first:
//  1. Defaults()
//  2. A YAML file passed with --config
//  3. REGISTRAR_* environment variables, e.g. REGISTRAR_AUTH_JWT_SECRET
//  4. Command-line flags bound with BindFlags
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/course-registration/internal/auth"
	"github.com/sakif/course-registration/internal/repository/sqldb"
	"github.com/sakif/course-registration/internal/tracing"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "REGISTRAR"

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  tracing.Config `mapstructure:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the store. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// AuthConfig configures sessions and password hashing.
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// CatalogConfig configures the course catalog.
type CatalogConfig struct {
	// File is a YAML catalog used by seeding; empty means the built-in one.
	File string `mapstructure:"file"`
	// SeedOnStart seeds an empty catalog when the server starts.
	SeedOnStart bool `mapstructure:"seed_on_start"`
	// CacheTTL is how long a catalog snapshot is served from memory.
	// Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: sqldb.DriverSQLite,
			DSN:    "data/registration.db",
		},
		Auth: AuthConfig{
			TokenTTL:   auth.DefaultTokenTTL,
			BcryptCost: auth.DefaultCost,
		},
		Catalog: CatalogConfig{
			SeedOnStart: true,
			CacheTTL:    5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the optional file at path,
// the environment and flags. flags may be nil.
//
// Load does not validate: serve needs the whole config to be valid, while
// migrate and seed only touch the database. Call Validate or
// ValidateStorage.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	return &cfg, nil
}

// BindFlags maps command-line flags onto config keys. Only flags present
// in the set are bound.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range map[string]string{
		"port":   "server.port",
		"db-dsn": "database.dsn",
	} {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: binding --%s: %w", flag, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("auth.bcrypt_cost", d.Auth.BcryptCost)
	v.SetDefault("auth.cookie_secure", d.Auth.CookieSecure)

	v.SetDefault("catalog.file", d.Catalog.File)
	v.SetDefault("catalog.seed_on_start", d.Catalog.SeedOnStart)
	v.SetDefault("catalog.cache_ttl", d.Catalog.CacheTTL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	errs := c.storageErrors()

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	if len(c.Auth.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d characters (set %s_AUTH_JWT_SECRET)",
			auth.MinSecretLength, EnvPrefix))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost) {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d",
			bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.Catalog.CacheTTL < 0 {
		errs = append(errs, errors.New("catalog.cache_ttl must not be negative"))
	}

	return joinErrors(errs)
}

// ValidateStorage checks only what the migrate and seed commands use: the
// database and logging settings.
func (c *Config) ValidateStorage() error {
	return joinErrors(c.storageErrors())
}

func (c *Config) storageErrors() []error {
	var errs []error

	switch c.Database.Driver {
	case sqldb.DriverSQLite, sqldb.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q",
			sqldb.DriverSQLite, sqldb.DriverPostgres, c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format))
	}

	return errs
}

func joinErrors(errs []error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewLogger builds the root logger described by c.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
