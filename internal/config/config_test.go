// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"log/slog"
	"strings"
	"testing"

	"studiosite/internal/cache"
	"studiosite/internal/resolve"
)

var allVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV", "LOG_LEVEL",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"CACHE_BACKEND", "CACHE_INVALIDATION", "VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD", "VALKEY_DB",
	"ID_LOOKUP", "SESSION_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "TOTP_SECRET",
	"CORS_ORIGIN", "STORAGE_BACKEND", "UPLOAD_DIR", "UPLOAD_URL", "UPLOAD_MAX_SIZE", "UPLOAD_MAX_FILES",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "NOTIFY_EMAIL",
}

// clearEnv sets every variable Load reads to "", which envOrDefault treats as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	checks := []struct {
		name      string
		got, want any
	}{
		{"Addr", cfg.Addr(), "0.0.0.0:8080"},
		{"Env", cfg.Env, EnvDevelopment},
		{"LogLevel", cfg.LogLevel, slog.LevelInfo},
		{"CacheBackend", cfg.CacheBackend, CacheMemory},
		{"CacheInvalidation", cfg.CacheInvalidation, cache.PolicyTTL},
		{"IDLookup", cfg.IDLookup, resolve.Fallback},
		{"StorageBackend", cfg.StorageBackend, StorageDisk},
		{"UploadMaxSize", cfg.UploadMaxSize, int64(10 << 20)},
		{"UploadMaxFiles", cfg.UploadMaxFiles, 10},
		{"SMTPPort", cfg.SMTPPort, 587},
		{"ValkeyAddr", cfg.ValkeyAddr(), "localhost:6379"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false for the default environment")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_INVALIDATION", "write")
	t.Setenv("ID_LOOKUP", "strict")
	t.Setenv("POSTGRES_USER", "site")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("UPLOAD_MAX_FILES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("port/level = %s/%v", cfg.Port, cfg.LogLevel)
	}
	if cfg.CacheInvalidation != cache.PolicyWrite || cfg.IDLookup != resolve.Strict {
		t.Errorf("policy/lookup = %s/%s", cfg.CacheInvalidation, cfg.IDLookup)
	}
	if cfg.UploadMaxFiles != 3 {
		t.Errorf("UploadMaxFiles = %d", cfg.UploadMaxFiles)
	}
	if !strings.HasPrefix(cfg.DSN(), "postgres://site:pw@localhost:5432/studiosite") {
		t.Errorf("DSN = %s", cfg.DSN())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad invalidation", map[string]string{"CACHE_INVALIDATION": "never"}, "CacheInvalidation"},
		{"bad lookup", map[string]string{"ID_LOOKUP": "guess"}, "IDLookup"},
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "SessionSecret"},
		{"bad number", map[string]string{"UPLOAD_MAX_SIZE": "ten"}, "UPLOAD_MAX_SIZE"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"s3 without bucket", map[string]string{"STORAGE_BACKEND": "s3", "S3_ACCESS_KEY": "k", "S3_SECRET_KEY": "s"}, "S3Bucket"},
		{"bad env", map[string]string{"APP_ENV": "staging"}, "Env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestLoad_ProductionRequirements(t *testing.T) {
	secret := strings.Repeat("s", 40)
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"default db password", map[string]string{"SESSION_SECRET": secret, "ADMIN_PASSWORD": "x"}, "POSTGRES_PASSWORD"},
		{"default secret", map[string]string{"POSTGRES_PASSWORD": "pw", "ADMIN_PASSWORD": "x"}, "SESSION_SECRET"},
		{"no admin credentials", map[string]string{"POSTGRES_PASSWORD": "pw", "SESSION_SECRET": secret}, "ADMIN_PASSWORD"},
		{"complete", map[string]string{"POSTGRES_PASSWORD": "pw", "SESSION_SECRET": secret, "ADMIN_PASSWORD_HASH": "$2a$10$x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", EnvProduction)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Load() = %v", err)
				}
				if cfg.IsDev() {
					t.Error("IsDev() = true in production")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
