// Package config loads service settings from configs/.env and the process
// environment. Environment variables win over the file; defaults fill the rest.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"vetlab/internal/database"
	"vetlab/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present.
const DefaultEnvFile = "configs/.env"

type Config struct {
	Port    string
	GinMode string

	Storage storage.Options

	HostAPIURL     string
	HostAPITimeout time.Duration

	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	CacheTTL        time.Duration
	AlertInterval   time.Duration
	AlertExpiryDays int
	AlertLowStock   int

	LogLevel  string
	LogFormat string
}

// Release reports whether gin runs in release mode.
func (c *Config) Release() bool { return c.GinMode == "release" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("storage_driver", string(storage.DriverFile))
	v.SetDefault("data_dir", "data")
	v.SetDefault("sqlite_path", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "postgres")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_prefix", "vetlab")
	v.SetDefault("s3_path_style", false)
	v.SetDefault("host_api_url", "")
	v.SetDefault("host_api_timeout", "5s")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("cors_origins", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("alert_interval", "30s")
	v.SetDefault("alert_expiry_days", 30)
	v.SetDefault("alert_low_stock", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads envFile (if it exists) into the environment and builds a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	// AutomaticEnv upper-cases keys, so port reads PORT, db_host reads DB_HOST.

	cfg := &Config{
		Port:    v.GetString("port"),
		GinMode: v.GetString("gin_mode"),
		Storage: storage.Options{
			Driver:     storage.Driver(strings.ToLower(v.GetString("storage_driver"))),
			DataDir:    v.GetString("data_dir"),
			SQLitePath: v.GetString("sqlite_path"),
			PostgresDSN: database.BuildDSN(
				v.GetString("db_host"), v.GetString("db_port"), v.GetString("db_user"),
				v.GetString("db_password"), v.GetString("db_name"), v.GetString("db_sslmode"),
			),
			S3: storage.S3Config{
				Bucket:    v.GetString("s3_bucket"),
				Region:    v.GetString("s3_region"),
				Endpoint:  v.GetString("s3_endpoint"),
				Prefix:    v.GetString("s3_prefix"),
				PathStyle: v.GetBool("s3_path_style"),
			},
		},
		HostAPIURL:      v.GetString("host_api_url"),
		HostAPITimeout:  v.GetDuration("host_api_timeout"),
		JWTSecret:       v.GetString("jwt_secret"),
		TokenTTL:        v.GetDuration("token_ttl"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		CacheTTL:        v.GetDuration("cache_ttl"),
		AlertInterval:   v.GetDuration("alert_interval"),
		AlertExpiryDays: v.GetInt("alert_expiry_days"),
		AlertLowStock:   v.GetInt("alert_low_stock"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogFormat:       strings.ToLower(v.GetString("log_format")),
	}

	if cfg.JWTSecret == "" {
		if cfg.Release() {
			return nil, errors.New("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = "default_super_secret_key"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite, storage.DriverPostgres:
	case storage.DriverS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.CacheTTL < 0 || c.AlertInterval <= 0 {
		return errors.New("CACHE_TTL must be >= 0 and ALERT_INTERVAL > 0")
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
