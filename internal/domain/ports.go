package domain

// OrderClient описывает взаимодействие с внешним сервисом создания заказов.
// Вызов не идемпотентен: слепой повтор может создать дубликат заказа,
// поэтому координатор вызывает его ровно один раз на попытку checkout.
type OrderClient interface {
	// CreateOrder отправляет снимок корзины и возвращает идентификатор созданного заказа.
	CreateOrder(req CreateOrderRequest) (orderID string, err error)
}

// EventPublisher публикует доменные события наружу (например, в Kafka).
// Публикация best-effort: её сбой не влияет на исход операции.
type EventPublisher interface {
	Publish(topic, key string, event interface{}) error
}
