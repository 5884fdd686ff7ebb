package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

func orderRequest() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Identity: domain.Identity{TableID: "9", UserID: "user-1"},
		Items: []domain.CartItem{
			{ID: "line-1", MenuItemID: 7, ItemName: "Pad Thai", PriceMinor: 1200, Qty: 2, Note: "no peanuts"},
		},
		TotalMinor: 2400,
	}
}

func TestClient_CreateOrder(t *testing.T) {
	var gotBody map[string]interface{}
	var gotUser, gotTable string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get("X-User-Id")
		gotTable = r.Header.Get("X-Table-Name")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"orderId": "ORD-42"})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	orderID, err := client.CreateOrder(orderRequest())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if orderID != "ORD-42" {
		t.Fatalf("expected ORD-42, got %s", orderID)
	}
	if gotUser != "user-1" || gotTable != "9" {
		t.Fatalf("identity headers not forwarded: user=%q table=%q", gotUser, gotTable)
	}
	if gotBody["totalAmount"].(float64) != 2400 {
		t.Fatalf("unexpected totalAmount: %v", gotBody["totalAmount"])
	}
	items := gotBody["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["itemId"].(float64) != 7 || first["unitPrice"].(float64) != 1200 {
		t.Fatalf("unexpected item payload: %v", first)
	}
}

func TestClient_CreateOrderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CreateOrder(orderRequest())
	if !errors.Is(err, domain.ErrOrderCreation) {
		t.Fatalf("expected ErrOrderCreation, got %v", err)
	}
}

func TestClient_CreateOrderConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // намеренно: адрес валиден, но никто не слушает

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CreateOrder(orderRequest())
	if !errors.Is(err, domain.ErrOrderCreation) {
		t.Fatalf("expected ErrOrderCreation, got %v", err)
	}
}

func TestClient_CreateOrderEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	orderID, err := client.CreateOrder(orderRequest())
	if err != nil {
		t.Fatalf("2xx without body must be a success: %v", err)
	}
	if orderID != "" {
		t.Fatalf("expected empty order id, got %s", orderID)
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient("post localhost:8080/orders"); err == nil {
		t.Fatal("expected error for non-absolute URL")
	}
}
