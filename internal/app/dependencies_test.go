package app

import (
	"context"
	"testing"

	"github.com/restaurant-platform/cart-service/internal/health"
)

func TestNewDependencies_MemoryDefaults(t *testing.T) {
	cfg := DefaultConfig()

	deps, err := NewDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close(nil)

	if deps.CartStore == nil {
		t.Error("CartStore should not be nil")
	}
	if deps.Archive == nil {
		t.Error("Archive should not be nil")
	}
	if deps.Idem == nil {
		t.Error("Idem should not be nil")
	}
}

func TestNewDependencies_UnknownStorageDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "cassandra"

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestNewDependencies_UnknownArchiveDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArchiveDriver = "dynamodb"

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown archive driver")
	}
}

func TestRegisterHealthChecks_MemoryHasNone(t *testing.T) {
	cfg := DefaultConfig()
	deps, err := NewDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close(nil)

	// Memory-драйверы не регистрируют внешних проверок.
	handler := health.NewHandler("test")
	deps.RegisterHealthChecks(handler)
}
