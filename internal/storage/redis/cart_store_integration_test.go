package redis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

const defaultLocalIntegrationAddr = "localhost:6379"

func openRedisStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	candidates := []string{
		strings.TrimSpace(os.Getenv("CART_REDIS_TEST_ADDR")),
		strings.TrimSpace(os.Getenv("CART_REDIS_ADDR")),
		defaultLocalIntegrationAddr,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := map[string]struct{}{}
	var openErrs []string
	for _, addr := range candidates {
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}

		store, err := Open(ctx, addr, "", 0)
		if err == nil {
			t.Cleanup(func() { _ = store.Close() })
			return store
		}
		openErrs = append(openErrs, addr+": "+err.Error())
	}

	t.Skipf("redis is not reachable for integration tests: %s", strings.Join(openErrs, "; "))
	return nil
}

func integrationIdentity() domain.Identity {
	// Уникальная идентичность на каждый прогон, чтобы тесты не мешали друг другу.
	return domain.Identity{TableID: "it", UserID: uuid.NewString()}
}

func TestCartStoreRedis_PutGetDelete(t *testing.T) {
	store := openRedisStoreForIntegrationTest(t)
	carts := NewCartStore(store, time.Minute)

	identity := integrationIdentity()
	cart := domain.Cart{
		CartID:    uuid.NewString(),
		Identity:  identity,
		Items:     []domain.CartItem{{ID: uuid.NewString(), MenuItemID: 7, ItemName: "Laksa", PriceMinor: 1400, Qty: 2, AddedAt: time.Now().UTC()}},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := carts.Put(cart); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	stored, err := carts.Get(identity)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Version != 1 {
		t.Fatalf("expected version 1, got %d", stored.Version)
	}
	if stored.TotalMinor() != 2800 {
		t.Fatalf("expected total 2800, got %d", stored.TotalMinor())
	}

	if err := carts.Delete(identity); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := carts.Get(identity); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after delete, got %v", err)
	}
	if err := carts.Delete(identity); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
}

func TestCartStoreRedis_VersionConflict(t *testing.T) {
	store := openRedisStoreForIntegrationTest(t)
	carts := NewCartStore(store, time.Minute)

	identity := integrationIdentity()
	cart := domain.Cart{CartID: uuid.NewString(), Identity: identity, CreatedAt: time.Now().UTC()}

	if err := carts.Put(cart); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	stale := cart
	stale.Version = 0
	first, err := carts.Get(identity)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := carts.Put(first); err != nil {
		t.Fatalf("put with current version failed: %v", err)
	}

	if err := carts.Put(stale); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}
