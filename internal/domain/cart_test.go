package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

func validCart() domain.Cart {
	now := time.Now().UTC()
	return domain.Cart{
		CartID:   "cart-1",
		Identity: domain.Identity{TableID: "12", UserID: "user-1"},
		Items: []domain.CartItem{
			{ID: "line-1", MenuItemID: 7, ItemName: "Pad Thai", PriceMinor: 1200, Qty: 2, AddedAt: now},
			{ID: "line-2", MenuItemID: 9, ItemName: "Green Tea", PriceMinor: 800, Qty: 1, AddedAt: now},
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIdentity_Key(t *testing.T) {
	id := domain.Identity{TableID: "12", UserID: "user-1"}
	if got := id.Key(); got != "cart:12:user-1" {
		t.Fatalf("unexpected key: %s", got)
	}
	if id.Key() != id.Key() {
		t.Fatal("key derivation must be deterministic")
	}
}

func TestIdentity_KeyDefaultTable(t *testing.T) {
	id := domain.Identity{UserID: "user-1"}
	if got := id.Key(); got != "cart:default:user-1" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestCart_TotalMinor(t *testing.T) {
	cart := validCart()
	if got := cart.TotalMinor(); got != 3200 {
		t.Fatalf("expected total 3200, got %d", got)
	}

	empty := domain.Cart{}
	if got := empty.TotalMinor(); got != 0 {
		t.Fatalf("expected 0 for empty cart, got %d", got)
	}
}

func TestCart_FindLineMergePolicy(t *testing.T) {
	cart := validCart()

	if idx := cart.FindLine(7, ""); idx != 0 {
		t.Fatalf("expected line 0, got %d", idx)
	}
	// Та же позиция меню с другой заметкой — отдельная строка.
	if idx := cart.FindLine(7, "no peanuts"); idx != -1 {
		t.Fatalf("expected -1 for different note, got %d", idx)
	}
}

func TestCart_ValidateInvariants(t *testing.T) {
	cart := validCart()
	if errs := cart.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	cart.Items[0].Qty = 0
	cart.Items[1].PriceMinor = -1
	cart.CartID = ""

	errs := cart.ValidateInvariants()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	assertContains := func(target error) {
		t.Helper()
		for _, err := range errs {
			if errors.Is(err, target) {
				return
			}
		}
		t.Fatalf("expected %v in %v", target, errs)
	}
	assertContains(domain.ErrQtyInvalid)
	assertContains(domain.ErrPriceNegative)
	assertContains(domain.ErrCartIDRequired)
}

func TestCart_Clone(t *testing.T) {
	cart := validCart()
	clone := cart.Clone()
	clone.Items[0].Qty = 99

	if cart.Items[0].Qty != 2 {
		t.Fatal("clone must not share item storage with the original")
	}
}

func TestIsRetryable(t *testing.T) {
	if !domain.IsRetryable(domain.ErrOrderCreation) {
		t.Fatal("order creation failure is retryable")
	}
	if domain.IsRetryable(domain.ErrEmptyCart) {
		t.Fatal("empty cart is terminal")
	}
}
