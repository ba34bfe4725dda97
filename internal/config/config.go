// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"studiosite/internal/cache"
	"studiosite/internal/resolve"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Backends.
const (
	CacheMemory   = "memory"
	CacheValkey   = "valkey"
	StorageDisk   = "disk"
	StorageS3     = "s3"
	minSecretSize = 32
	defaultSecret = "dev-session-secret-change-me-0123456789"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel slog.Level

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Response cache and session revocation
	CacheBackend      string // "memory" or "valkey"
	CacheInvalidation cache.Policy
	ValkeyHost        string
	ValkeyPort        string
	ValkeyPassword    string
	ValkeyDB          int

	// Identifier lookup mode for single-item reads
	IDLookup resolve.Mode

	// Admin authentication
	SessionSecret     string
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	TOTPSecret        string

	// Browser origin of the public site and admin UI
	CORSOrigin string

	// Uploads
	StorageBackend string // "disk" or "s3"
	UploadDir      string
	UploadURL      string
	UploadMaxSize  int64
	UploadMaxFiles int
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3PublicURL    string

	// Contact notifications
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	NotifyTo     string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", EnvDevelopment),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "studiosite"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "studiosite"),

		CacheBackend:      envOrDefault("CACHE_BACKEND", CacheMemory),
		CacheInvalidation: cache.Policy(envOrDefault("CACHE_INVALIDATION", string(cache.PolicyTTL))),
		ValkeyHost:        envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:        envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword:    os.Getenv("VALKEY_PASSWORD"),

		IDLookup: resolve.Mode(envOrDefault("ID_LOOKUP", string(resolve.Fallback))),

		SessionSecret:     envOrDefault("SESSION_SECRET", defaultSecret),
		AdminUsername:     envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		TOTPSecret:        os.Getenv("TOTP_SECRET"),

		CORSOrigin: envOrDefault("CORS_ORIGIN", "http://localhost:3000"),

		StorageBackend: envOrDefault("STORAGE_BACKEND", StorageDisk),
		UploadDir:      envOrDefault("UPLOAD_DIR", "./uploads"),
		UploadURL:      envOrDefault("UPLOAD_URL", "/uploads"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		NotifyTo:     os.Getenv("NOTIFY_EMAIL"),
	}

	var errs []error
	cfg.LogLevel = parseLevel(envOrDefault("LOG_LEVEL", "info"), &errs)
	cfg.ValkeyDB = envInt("VALKEY_DB", 0, &errs)
	cfg.UploadMaxSize = int64(envInt("UPLOAD_MAX_SIZE", 10<<20, &errs))
	cfg.UploadMaxFiles = envInt("UPLOAD_MAX_FILES", 10, &errs)
	cfg.SMTPPort = envInt("SMTP_PORT", 587, &errs)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and the settings production cannot run without.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Env, validation.Required, validation.In(EnvDevelopment, EnvProduction, EnvTesting)),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.CacheBackend, validation.In(CacheMemory, CacheValkey)),
		validation.Field(&c.CacheInvalidation, validation.In(cache.PolicyTTL, cache.PolicyWrite)),
		validation.Field(&c.IDLookup, validation.In(resolve.Strict, resolve.Fallback)),
		validation.Field(&c.SessionSecret, validation.Required, validation.Length(minSecretSize, 0)),
		validation.Field(&c.AdminUsername, validation.Required),
		validation.Field(&c.CORSOrigin, validation.Required, is.URL),
		validation.Field(&c.StorageBackend, validation.In(StorageDisk, StorageS3)),
		validation.Field(&c.S3Bucket, validation.When(c.StorageBackend == StorageS3, validation.Required)),
		validation.Field(&c.S3AccessKey, validation.When(c.StorageBackend == StorageS3, validation.Required)),
		validation.Field(&c.S3SecretKey, validation.When(c.StorageBackend == StorageS3, validation.Required)),
		validation.Field(&c.UploadMaxSize, validation.Min(int64(1))),
		validation.Field(&c.UploadMaxFiles, validation.Min(1)),
		validation.Field(&c.NotifyTo, is.EmailFormat),
	)
	if err != nil {
		return err
	}

	if c.Env == EnvProduction {
		switch {
		case c.DBPassword == "changeme":
			return errors.New("POSTGRES_PASSWORD must be set in production")
		case c.SessionSecret == defaultSecret:
			return errors.New("SESSION_SECRET must be set in production")
		case c.AdminPassword == "" && c.AdminPasswordHash == "":
			return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a number", key, v))
		return fallback
	}
	return n
}

func parseLevel(s string, errs *[]error) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		*errs = append(*errs, fmt.Errorf("LOG_LEVEL: %w", err))
		return slog.LevelInfo
	}
	return l
}
