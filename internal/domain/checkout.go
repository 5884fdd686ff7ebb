package domain

import "time"

// CheckoutStatus описывает исход конвертации корзины в заказ.
type CheckoutStatus string

const (
	// CheckoutStatusCreated — заказ подтверждён внешним сервисом, корзина очищена (или помечена к очистке).
	CheckoutStatusCreated CheckoutStatus = "created"
	// CheckoutStatusFailed — внешний вызов не удался, корзина сохранена для повтора.
	CheckoutStatusFailed CheckoutStatus = "failed"
)

// CheckoutResult — результат успешного checkout, возвращаемый вызывающему.
type CheckoutResult struct {
	OrderID  string
	Identity Identity
	// Items — снимок строк корзины на момент checkout.
	Items []CartItem
	// TotalMinor — сумма qty*price по всем строкам на момент checkout.
	TotalMinor  int64
	Status      CheckoutStatus
	ConfirmedAt time.Time
}

// CreateOrderRequest — полезная нагрузка для внешнего сервиса создания заказа.
type CreateOrderRequest struct {
	Identity   Identity
	Items      []CartItem
	TotalMinor int64
}
