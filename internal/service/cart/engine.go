package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/restaurant-platform/cart-service/internal/domain"
	"github.com/restaurant-platform/cart-service/internal/messaging/kafka"
	"github.com/restaurant-platform/cart-service/internal/metrics"
)

// maxWriteAttempts ограничивает повторы записи при конфликте версий.
const maxWriteAttempts = 3

// Engine реализует инварианты корзины поверх CartStore.
// Движок не держит состояния сессии: идентичность передаётся в каждый вызов.
type Engine struct {
	store     domain.CartStore
	logger    *log.Entry
	metrics   *metrics.CartMetrics
	publisher domain.EventPublisher
}

// AddItemInput — параметры добавления строки.
type AddItemInput struct {
	MenuItemID int64
	ItemName   string
	PriceMinor int64
	Qty        int32
	Note       string
}

// NewEngine создаёт движок корзины.
func NewEngine(store domain.CartStore, m *metrics.CartMetrics, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.WithField("component", "cart-engine")
	}
	return &Engine{store: store, logger: logger, metrics: m}
}

// NewEngineWithPublisher создаёт движок, публикующий события открытия корзины.
func NewEngineWithPublisher(store domain.CartStore, m *metrics.CartMetrics, publisher domain.EventPublisher, logger *log.Entry) *Engine {
	e := NewEngine(store, m, logger)
	e.publisher = publisher
	return e
}

// OpenCart возвращает корзину идентичности, создавая её при первом обращении.
// Идемпотентно: повторный вызов возвращает существующую корзину и не теряет строки.
func (e *Engine) OpenCart(identity domain.Identity) (domain.Cart, error) {
	if err := identity.Validate(); err != nil {
		return domain.Cart{}, err
	}

	cart, err := e.store.Get(identity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{}, err
	}

	now := time.Now().UTC()
	cart = domain.Cart{
		CartID:    "cart-" + uuid.NewString(),
		Identity:  identity,
		Items:     []domain.CartItem{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.Put(cart); err != nil {
		if domain.IsVersionConflict(err) {
			// Параллельный open успел первым: возвращаем его корзину.
			return e.store.Get(identity)
		}
		return domain.Cart{}, err
	}

	e.metrics.RecordCartOpened()
	if e.publisher != nil {
		event := kafka.NewCartEvent(kafka.EventTypeCartOpened, cart.CartID, identity)
		if err := e.publisher.Publish(kafka.TopicCartEvents, event.UserID, event); err != nil {
			e.logger.WithError(err).Debug("failed to publish cart opened event")
		}
	}
	e.logger.WithFields(log.Fields{
		"cart_id": cart.CartID,
		"key":     identity.Key(),
	}).Info("cart opened")

	return e.store.Get(identity)
}

// AddItem добавляет строку или увеличивает количество существующей.
// Строки сливаются только при совпадении menuItemId и note.
// Требует предварительного OpenCart, иначе ErrCartNotFound.
func (e *Engine) AddItem(identity domain.Identity, in AddItemInput) (domain.CartItem, error) {
	if err := identity.Validate(); err != nil {
		return domain.CartItem{}, err
	}
	if in.MenuItemID <= 0 {
		return domain.CartItem{}, domain.ErrMenuItemRequired
	}
	if in.Qty < 1 {
		return domain.CartItem{}, domain.ErrQtyInvalid
	}
	if in.PriceMinor < 0 {
		return domain.CartItem{}, domain.ErrPriceNegative
	}

	var line domain.CartItem
	err := e.mutate(identity, func(cart *domain.Cart) error {
		if idx := cart.FindLine(in.MenuItemID, in.Note); idx >= 0 {
			cart.Items[idx].Qty += in.Qty
			line = cart.Items[idx]
			return nil
		}

		line = domain.CartItem{
			ID:         uuid.NewString(),
			MenuItemID: in.MenuItemID,
			ItemName:   in.ItemName,
			PriceMinor: in.PriceMinor,
			Qty:        in.Qty,
			Note:       in.Note,
			AddedAt:    time.Now().UTC(),
		}
		cart.Items = append(cart.Items, line)
		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	e.metrics.RecordItemAdded()
	return line, nil
}

// UpdateItem меняет количество строки. Количество <= 0 эквивалентно удалению:
// нулевые и отрицательные количества никогда не сохраняются.
// Возвращает removed=true, если строка была удалена.
func (e *Engine) UpdateItem(identity domain.Identity, itemID string, qty int32) (item domain.CartItem, removed bool, err error) {
	if err := identity.Validate(); err != nil {
		return domain.CartItem{}, false, err
	}

	err = e.mutate(identity, func(cart *domain.Cart) error {
		idx := cart.FindItem(itemID)
		if idx < 0 {
			return domain.ErrItemNotFound
		}

		if qty <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			removed = true
			return nil
		}

		cart.Items[idx].Qty = qty
		item = cart.Items[idx]
		return nil
	})
	if err != nil {
		return domain.CartItem{}, false, err
	}

	if removed {
		e.metrics.RecordItemRemoved()
	}
	return item, removed, nil
}

// RemoveItem удаляет строку. Идемпотентно: отсутствие строки или самой
// корзины не ошибка, потому что оптимистичный клиент может гоняться
// с серверным состоянием (например, с завершившимся checkout).
func (e *Engine) RemoveItem(identity domain.Identity, itemID string) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	err := e.mutate(identity, func(cart *domain.Cart) error {
		idx := cart.FindItem(itemID)
		if idx < 0 {
			return nil
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		e.metrics.RecordItemRemoved()
		return nil
	})
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	return err
}

// GetCart возвращает корзину идентичности. Отсутствующая корзина — это
// пустая корзина, не ошибка: чтение никогда не требует предварительного open.
func (e *Engine) GetCart(identity domain.Identity) (domain.Cart, error) {
	if err := identity.Validate(); err != nil {
		return domain.Cart{}, err
	}

	cart, err := e.store.Get(identity)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{Identity: identity, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// GetTotal возвращает сумму корзины; 0 для пустой или отсутствующей.
func (e *Engine) GetTotal(identity domain.Identity) (int64, error) {
	cart, err := e.GetCart(identity)
	if err != nil {
		return 0, err
	}
	return cart.TotalMinor(), nil
}

// Clear явно удаляет корзину целиком. Идемпотентно.
func (e *Engine) Clear(identity domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	if err := e.store.Delete(identity); err != nil {
		return err
	}
	e.metrics.RecordCartClosed()
	return nil
}

// mutate выполняет цикл прочитать-изменить-записать целиком: движок всегда
// собирает новое состояние корзины в памяти и пишет его одним Put.
// Конфликт версий приводит к повторному чтению и повторному применению
// мутации, ограниченному maxWriteAttempts попытками.
func (e *Engine) mutate(identity domain.Identity, apply func(*domain.Cart) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		cart, err := e.store.Get(identity)
		if err != nil {
			return err
		}

		if err := apply(&cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()

		err = e.store.Put(cart)
		if err == nil {
			return nil
		}
		if !domain.IsVersionConflict(err) {
			return err
		}

		lastErr = err
		e.metrics.RecordVersionConflict()
		e.logger.WithFields(log.Fields{
			"key":     identity.Key(),
			"attempt": attempt,
		}).Debug("cart write conflict, retrying")
	}
	return lastErr
}
