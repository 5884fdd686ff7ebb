package domain

import "time"

// CartStore описывает требования к key-value хранилищу корзин.
// Store не валидирует содержимое корзины — это зона ответственности движка.
type CartStore interface {
	// Get возвращает корзину или ErrCartNotFound, если записи нет.
	// Недоступность хранилища даёт ErrStoreUnavailable, никогда nil-корзину с успехом.
	Get(identity Identity) (Cart, error)
	// Put перезаписывает корзину целиком. Если версия не совпадает с текущей
	// записью, возвращает ErrCartVersionConflict и ничего не меняет.
	Put(cart Cart) error
	// Delete удаляет корзину. Удаление отсутствующей корзины не ошибка.
	Delete(identity Identity) error
}

// OrderArchive хранит результаты успешных checkout для последующего просмотра заказа.
type OrderArchive interface {
	// Record сохраняет результат checkout. Повторная запись того же OrderID не ошибка.
	Record(result CheckoutResult) error
	// Get возвращает сохранённый заказ или ErrOrderNotFound.
	Get(orderID string) (CheckoutResult, error)
}

// IdempotencyRepository хранит состояние обработки checkout по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key, orderID string, totalMinor int64) error
	MarkFailed(key string) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
