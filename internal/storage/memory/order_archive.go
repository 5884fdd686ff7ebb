package memory

import (
	"sync"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

// orderArchiveInMemory хранит результаты checkout в памяти.
type orderArchiveInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.CheckoutResult
}

// NewOrderArchive создаёт in-memory реализацию OrderArchive.
func NewOrderArchive() domain.OrderArchive {
	return &orderArchiveInMemory{
		items: make(map[string]domain.CheckoutResult),
	}
}

// Record сохраняет результат checkout. Повторная запись того же заказа перезаписывает его.
func (a *orderArchiveInMemory) Record(result domain.CheckoutResult) error {
	if result.OrderID == "" {
		return domain.ErrOrderNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.items[result.OrderID] = cloneResult(result)
	return nil
}

// Get возвращает сохранённый заказ или ErrOrderNotFound.
func (a *orderArchiveInMemory) Get(orderID string) (domain.CheckoutResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result, ok := a.items[orderID]
	if !ok {
		return domain.CheckoutResult{}, domain.ErrOrderNotFound
	}
	return cloneResult(result), nil
}

func cloneResult(src domain.CheckoutResult) domain.CheckoutResult {
	dst := src
	dst.Items = append([]domain.CartItem(nil), src.Items...)
	return dst
}

var _ domain.OrderArchive = (*orderArchiveInMemory)(nil)
