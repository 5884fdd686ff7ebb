package order

import (
	"sync"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

// MockClient — конфигурируемая заглушка OrderClient для тестов и локального запуска.
type MockClient struct {
	mu sync.Mutex

	OrderID   string
	CreateErr error

	CreateCalls int
	LastRequest domain.CreateOrderRequest
}

// NewMockClient возвращает mock с успешным сценарием по умолчанию.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// CreateOrder возвращает заранее настроенный результат и считает вызовы.
func (m *MockClient) CreateOrder(req domain.CreateOrderRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	m.LastRequest = req
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	return m.OrderID, nil
}

var _ domain.OrderClient = (*MockClient)(nil)
