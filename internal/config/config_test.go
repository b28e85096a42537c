package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresSigningSecret(t *testing.T) {
	os.Unsetenv("TOKEN_SIGNING_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error when TOKEN_SIGNING_SECRET is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("TOKEN_SIGNING_SECRET", "test-secret")
	defer os.Unsetenv("TOKEN_SIGNING_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Listen != "0.0.0.0:3000" {
		t.Errorf("Listen = %q, want 0.0.0.0:3000", cfg.Listen)
	}
	if cfg.CacheTTLSeconds != 3600 {
		t.Errorf("CacheTTLSeconds = %d, want 3600", cfg.CacheTTLSeconds)
	}
	if cfg.ClickQueueCapacity != 10000 {
		t.Errorf("ClickQueueCapacity = %d, want 10000", cfg.ClickQueueCapacity)
	}
	if cfg.ShutdownDeadlineSecs != 30 {
		t.Errorf("ShutdownDeadlineSecs = %d, want 30", cfg.ShutdownDeadlineSecs)
	}
	if cfg.BehindProxy {
		t.Error("BehindProxy should default to false")
	}
}

func TestConfig_DSN_PrefersDatabaseURL(t *testing.T) {
	os.Setenv("TOKEN_SIGNING_SECRET", "test-secret")
	os.Setenv("DATABASE_URL", "postgres://explicit-dsn")
	defer func() {
		os.Unsetenv("TOKEN_SIGNING_SECRET")
		os.Unsetenv("DATABASE_URL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN() != "postgres://explicit-dsn" {
		t.Errorf("DSN() = %q, want the explicit DATABASE_URL", cfg.DSN())
	}
}

func TestConfig_DSN_AssembledFromParts(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5432, DBName: "d"}
	want := "postgres://u:p@h:5432/d?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestConfig_Scheme_DefaultsToHTTPSWhenUnset(t *testing.T) {
	cfg := &Config{}
	if got := cfg.Scheme(); got != "https" {
		t.Errorf("Scheme() = %q, want https", got)
	}
}

func TestConfig_Scheme_ReadsBaseURL(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost:3000"}
	if got := cfg.Scheme(); got != "http" {
		t.Errorf("Scheme() = %q, want http", got)
	}
}

func TestConfig_CORSOrigins_SplitsAndTrims(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "https://a.example, https://b.example"}
	origins := cfg.CORSOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %+v", origins)
	}
}
