package kafka

import (
	"time"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

// EventType определяет тип события корзины.
type EventType string

const (
	// EventTypeCartOpened — создана новая корзина.
	EventTypeCartOpened EventType = "cart.opened"
	// EventTypeCartCheckedOut — корзина сконвертирована в заказ.
	EventTypeCartCheckedOut EventType = "cart.checked_out"
	// EventTypeCheckoutFailed — внешний вызов создания заказа не удался.
	EventTypeCheckoutFailed EventType = "cart.checkout_failed"
)

// Topics для Kafka.
const (
	TopicCartEvents = "cart.events"
)

// CartEvent представляет событие жизненного цикла корзины.
type CartEvent struct {
	EventType  EventType `json:"event_type"`
	CartID     string    `json:"cart_id"`
	TableID    string    `json:"table_id"`
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id,omitempty"`
	TotalMinor int64     `json:"total_minor,omitempty"`
	ItemCount  int       `json:"item_count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewCartEvent создает событие для корзины данной идентичности.
func NewCartEvent(eventType EventType, cartID string, identity domain.Identity) *CartEvent {
	return &CartEvent{
		EventType: eventType,
		CartID:    cartID,
		TableID:   identity.TableID,
		UserID:    identity.UserID,
		Timestamp: time.Now(),
	}
}

// NewCheckoutEvent создает событие по результату checkout.
func NewCheckoutEvent(eventType EventType, result domain.CheckoutResult) *CartEvent {
	return &CartEvent{
		EventType:  eventType,
		OrderID:    result.OrderID,
		TableID:    result.Identity.TableID,
		UserID:     result.Identity.UserID,
		TotalMinor: result.TotalMinor,
		ItemCount:  len(result.Items),
		Timestamp:  time.Now(),
	}
}
