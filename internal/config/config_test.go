package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	cfg := Load()

	if cfg.Server.Port != "3333" {
		t.Errorf("Expected default port 3333, got %s", cfg.Server.Port)
	}
	if cfg.Storage.Namespace != "cardify" {
		t.Errorf("Expected namespace cardify, got %s", cfg.Storage.Namespace)
	}
	if cfg.Auth.DefaultActor != "Demo User" {
		t.Errorf("Expected default actor Demo User, got %s", cfg.Auth.DefaultActor)
	}
	if cfg.QR.Size != 256 {
		t.Errorf("Expected QR size 256, got %d", cfg.QR.Size)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("SEED_ON_FIRST_RUN", "false")
	t.Setenv("SERVER_READ_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("FCM_DEVICE_TOKENS", " tok-a, ,tok-b ")
	t.Setenv("NOTIFY_WORKERS", "not-a-number")

	cfg := Load()

	if cfg.Server.Port != "8080" || cfg.Storage.Driver != "redis" || cfg.Storage.SeedOnFirst {
		t.Errorf("Overrides not applied: %+v %+v", cfg.Server, cfg.Storage)
	}
	if cfg.Server.ReadTimeout != 2*time.Second {
		t.Errorf("Expected 2s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("Expected 2.5 rps, got %v", cfg.RateLimit.RPS)
	}
	if len(cfg.Notifications.FCMDeviceTokens) != 2 || cfg.Notifications.FCMDeviceTokens[1] != "tok-b" {
		t.Errorf("Unexpected device tokens %v", cfg.Notifications.FCMDeviceTokens)
	}
	if cfg.Notifications.Workers != 2 {
		t.Errorf("Expected fallback worker count for bad value, got %d", cfg.Notifications.Workers)
	}
}
