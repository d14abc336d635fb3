package config

import (
	"testing"
	"time"
)

const validSecret = "this_is_a_valid_long_token_signing_secret_123456"

func TestLoadRejectsMissingSigningSecret(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail without a signing secret")
	}
}

func TestLoadRejectsPlaceholderSigningSecret(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET", placeholderSigningSecret)
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail with the placeholder signing secret")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET", validSecret)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.ParkingCapacity != 60 {
		t.Fatalf("expected parking capacity 60, got %d", cfg.ParkingCapacity)
	}
	if cfg.NotifySender != "log" {
		t.Fatalf("expected log notify sender, got %q", cfg.NotifySender)
	}
}

func TestLoadPasswordBounds(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET", validSecret)
	t.Setenv("PASSWORD_MIN_LENGTH", "16")
	t.Setenv("PASSWORD_MAX_LENGTH", "12")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail for invalid password bounds")
	}
}

func TestLoadCaptchaDefaultsVerifyURL(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET", validSecret)
	t.Setenv("CAPTCHA_ENABLED", "true")
	t.Setenv("CAPTCHA_SECRET", "s3cret")
	t.Setenv("CAPTCHA_PROVIDER", "hcaptcha")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CaptchaVerifyURL != "https://hcaptcha.com/siteverify" {
		t.Fatalf("unexpected verify url %q", cfg.CaptchaVerifyURL)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET", validSecret)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}
