package app

import (
	"testing"
	"time"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.StorageDriver != "memory" {
		t.Errorf("expected StorageDriver memory, got %s", cfg.StorageDriver)
	}
	if cfg.ArchiveDriver != "memory" {
		t.Errorf("expected ArchiveDriver memory, got %s", cfg.ArchiveDriver)
	}
	if cfg.CartTTL != 24*time.Hour {
		t.Errorf("expected CartTTL 24h, got %s", cfg.CartTTL)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTPAddr == "" {
		t.Error("HTTPAddr should not be empty")
	}
	if cfg.RedisAddr == "" {
		t.Error("RedisAddr should not be empty")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":18080")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CART_TTL", "30m")
	t.Setenv("ORDER_SERVICE_URL", "http://orders:8080")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTPAddr != ":18080" {
		t.Errorf("expected HTTPAddr :18080, got %s", cfg.HTTPAddr)
	}
	if cfg.StorageDriver != "redis" {
		t.Errorf("expected StorageDriver redis, got %s", cfg.StorageDriver)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("expected RedisAddr redis:6379, got %s", cfg.RedisAddr)
	}
	if cfg.CartTTL != 30*time.Minute {
		t.Errorf("expected CartTTL 30m, got %s", cfg.CartTTL)
	}
	if cfg.OrderServiceURL != "http://orders:8080" {
		t.Errorf("expected order service url, got %s", cfg.OrderServiceURL)
	}
	if cfg.JWTSecret != "secret" {
		t.Errorf("expected jwt secret, got %s", cfg.JWTSecret)
	}
}
