package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/restaurant-platform/cart-service/internal/domain"
	"github.com/restaurant-platform/cart-service/internal/messaging/kafka"
	"github.com/restaurant-platform/cart-service/internal/metrics"
)

// idempotencyTTL ограничивает срок жизни записей о выполненных checkout.
const idempotencyTTL = 24 * time.Hour

// Coordinator конвертирует корзину в заказ ровно один раз.
//
// Последовательность: снимок корзины → единственный неидемпотентный вызов
// создания заказа → очистка корзины. Контракт на частичные сбои:
//   - сбой вызова создания заказа не трогает корзину, клиент может повторить;
//   - сбой очистки после подтверждённого заказа не отменяет успех —
//     заказ существует, устаревшая корзина меньший, восстановимый дефект.
//
// Координатор сам не повторяет вызов создания заказа: слепой повтор
// неидемпотентного вызова может породить дубликат заказа.
type Coordinator struct {
	store     domain.CartStore
	orders    domain.OrderClient
	archive   domain.OrderArchive
	idem      domain.IdempotencyRepository
	publisher domain.EventPublisher
	logger    *log.Entry
	metrics   *metrics.CartMetrics
}

// NewCoordinator создаёт рабочий экземпляр координатора.
func NewCoordinator(
	store domain.CartStore,
	orders domain.OrderClient,
	archive domain.OrderArchive,
	idem domain.IdempotencyRepository,
	logger *log.Entry,
) *Coordinator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Coordinator{
		store:   store,
		orders:  orders,
		archive: archive,
		idem:    idem,
		logger:  logger,
		metrics: metrics.NewCartMetrics(),
	}
}

// NewCoordinatorWithPublisher создаёт координатор, публикующий события checkout.
func NewCoordinatorWithPublisher(
	store domain.CartStore,
	orders domain.OrderClient,
	archive domain.OrderArchive,
	idem domain.IdempotencyRepository,
	publisher domain.EventPublisher,
	logger *log.Entry,
) *Coordinator {
	c := NewCoordinator(store, orders, archive, idem, logger)
	c.publisher = publisher
	return c
}

// NewCoordinatorWithoutMetrics создаёт координатор без метрик (для тестов).
func NewCoordinatorWithoutMetrics(
	store domain.CartStore,
	orders domain.OrderClient,
	archive domain.OrderArchive,
	idem domain.IdempotencyRepository,
	logger *log.Entry,
) *Coordinator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Coordinator{
		store:   store,
		orders:  orders,
		archive: archive,
		idem:    idem,
		logger:  logger,
		metrics: nil,
	}
}

// Checkout выполняет конвертацию корзины идентичности в заказ.
// Непустой idempotencyKey включает защиту от дубликатов: повтор с тем же
// ключом возвращает результат первого успешного выполнения, не создавая
// второго заказа.
func (c *Coordinator) Checkout(identity domain.Identity, idempotencyKey string) (domain.CheckoutResult, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordCheckoutDuration(time.Since(start))
	}()

	if err := identity.Validate(); err != nil {
		return domain.CheckoutResult{}, err
	}

	if c.idem == nil {
		// Без репозитория ключей защита от дубликатов недоступна.
		idempotencyKey = ""
	}

	if idempotencyKey != "" {
		if replay, done, err := c.claimKey(identity, idempotencyKey); err != nil {
			return domain.CheckoutResult{}, err
		} else if done {
			return replay, nil
		}
	}

	// Снимок корзины: единственное чтение, по которому строится заказ.
	snapshot, err := c.store.Get(identity)
	if errors.Is(err, domain.ErrCartNotFound) || (err == nil && snapshot.IsEmpty()) {
		c.metrics.RecordCheckoutRejected()
		c.markFailed(idempotencyKey)
		return domain.CheckoutResult{}, domain.ErrEmptyCart
	}
	if err != nil {
		c.markFailed(idempotencyKey)
		return domain.CheckoutResult{}, err
	}

	orderID, err := c.orders.CreateOrder(domain.CreateOrderRequest{
		Identity:   identity,
		Items:      snapshot.Items,
		TotalMinor: snapshot.TotalMinor(),
	})
	if err != nil {
		// Корзина не тронута: клиент может повторить checkout, ничего не потеряв.
		c.metrics.RecordCheckoutFailed()
		c.markFailed(idempotencyKey)
		c.publishEvent(kafka.NewCheckoutEvent(kafka.EventTypeCheckoutFailed, domain.CheckoutResult{
			Identity:   identity,
			TotalMinor: snapshot.TotalMinor(),
			Status:     domain.CheckoutStatusFailed,
		}))
		c.logger.WithError(err).WithField("key", identity.Key()).Warn("order creation failed, cart preserved")
		if errors.Is(err, domain.ErrOrderCreation) {
			return domain.CheckoutResult{}, err
		}
		return domain.CheckoutResult{}, fmt.Errorf("%w: %v", domain.ErrOrderCreation, err)
	}
	if orderID == "" {
		orderID = "ORD-" + uuid.NewString()
	}

	result := domain.CheckoutResult{
		OrderID:     orderID,
		Identity:    identity,
		Items:       snapshot.Items,
		TotalMinor:  snapshot.TotalMinor(),
		Status:      domain.CheckoutStatusCreated,
		ConfirmedAt: time.Now().UTC(),
	}

	// Заказ подтверждён: очищаем корзину. Сбой очистки не отменяет успех —
	// следующий open покажет оставшиеся строки, и UI их согласует.
	if err := c.store.Delete(identity); err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"key":      identity.Key(),
		}).Error("cart clear failed after confirmed order, returning success anyway")
	} else {
		c.metrics.RecordCartClosed()
	}

	if c.archive != nil {
		if err := c.archive.Record(result); err != nil {
			c.logger.WithError(err).WithField("order_id", orderID).Warn("order archive write failed")
		}
	}

	if idempotencyKey != "" {
		if err := c.idem.MarkDone(idempotencyKey, orderID, result.TotalMinor); err != nil {
			c.logger.WithError(err).WithField("idempotency_key", idempotencyKey).Warn("failed to mark idempotency record done")
		}
	}

	c.publishEvent(kafka.NewCheckoutEvent(kafka.EventTypeCartCheckedOut, result))
	c.metrics.RecordCheckoutCompleted()
	c.logger.WithFields(log.Fields{
		"order_id":    orderID,
		"key":         identity.Key(),
		"total_minor": result.TotalMinor,
	}).Info("checkout completed")

	return result, nil
}

// GetOrder возвращает сохранённый результат checkout по идентификатору заказа.
func (c *Coordinator) GetOrder(orderID string) (domain.CheckoutResult, error) {
	if c.archive == nil {
		return domain.CheckoutResult{}, domain.ErrOrderNotFound
	}
	return c.archive.Get(orderID)
}

// claimKey регистрирует idempotency-key. Возвращает done=true и сохранённый
// результат, если checkout с этим ключом уже завершился успехом.
func (c *Coordinator) claimKey(identity domain.Identity, key string) (domain.CheckoutResult, bool, error) {
	hash := requestHash(identity)

	_, err := c.idem.CreateProcessing(key, hash, time.Now().UTC().Add(idempotencyTTL))
	if err == nil {
		return domain.CheckoutResult{}, false, nil
	}
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		return domain.CheckoutResult{}, false, err
	}

	record, getErr := c.idem.Get(key)
	if getErr != nil {
		return domain.CheckoutResult{}, false, getErr
	}

	switch record.Status {
	case domain.IdempotencyStatusDone:
		// Повтор после успешного checkout: возвращаем прежний результат.
		return domain.CheckoutResult{
			OrderID:     record.OrderID,
			Identity:    identity,
			TotalMinor:  record.TotalMinor,
			Status:      domain.CheckoutStatusCreated,
			ConfirmedAt: record.UpdatedAt,
		}, true, nil
	case domain.IdempotencyStatusFailed:
		// Прошлая попытка не удалась: ключ можно использовать снова.
		return domain.CheckoutResult{}, false, nil
	default:
		return domain.CheckoutResult{}, false, domain.ErrIdempotencyKeyAlreadyExists
	}
}

func (c *Coordinator) markFailed(key string) {
	if key == "" {
		return
	}
	if err := c.idem.MarkFailed(key); err != nil {
		c.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to mark idempotency record failed")
	}
}

func (c *Coordinator) publishEvent(event *kafka.CartEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(kafka.TopicCartEvents, event.UserID, event); err != nil {
		c.logger.WithError(err).Debug("failed to publish checkout event")
	}
}

// requestHash связывает idempotency-key с идентичностью корзины,
// чтобы чужой повтор того же ключа был отвергнут.
func requestHash(identity domain.Identity) string {
	sum := sha256.Sum256([]byte(identity.Key()))
	return hex.EncodeToString(sum[:])
}
