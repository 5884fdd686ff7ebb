package memory

import (
	"sync"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

// cartStoreInMemory — простая in-memory реализация CartStore.
type cartStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart
}

// NewCartStore возвращает in-memory хранилище корзин для локальной разработки и тестов.
func NewCartStore() domain.CartStore {
	return &cartStoreInMemory{
		items: make(map[string]domain.Cart),
	}
}

// Get возвращает корзину или ErrCartNotFound, если её нет.
func (s *cartStoreInMemory) Get(identity domain.Identity) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.items[identity.Key()]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	// Возвращаем копию, чтобы избежать непредсказуемых мутаций извне.
	return cart.Clone(), nil
}

// Put перезаписывает корзину целиком с проверкой версии (optimistic locking).
// Новая корзина записывается только с версией 0.
func (s *cartStoreInMemory) Put(cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cart.Identity.Key()
	current, ok := s.items[key]
	if !ok {
		if cart.Version != 0 {
			// Корзина исчезла между чтением и записью (например, очищена checkout).
			return domain.ErrCartNotFound
		}
	} else if current.Version != cart.Version {
		return domain.ErrCartVersionConflict
	}

	// Инкрементируем версию перед сохранением.
	cart.Version++
	s.items[key] = cart.Clone()
	return nil
}

// Delete удаляет корзину. Идемпотентно: отсутствие записи не ошибка.
func (s *cartStoreInMemory) Delete(identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, identity.Key())
	return nil
}

var _ domain.CartStore = (*cartStoreInMemory)(nil)
