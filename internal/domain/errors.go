package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора пользователя в идентичности корзины.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствующего идентификатора корзины.
	ErrCartIDRequired = errors.New("cart_id is required")
	// Ошибка отсутствующего или некорректного идентификатора позиции меню.
	ErrMenuItemRequired = errors.New("menu_item_id must be greater than zero")
	// Ошибка при некорректном количестве (< 1 при добавлении).
	ErrQtyInvalid = errors.New("quantity must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrPriceNegative = errors.New("unit price must be non-negative")
	// ErrCartNotFound возвращается при мутации корзины, которая не была открыта.
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound возвращается, если строки с данным ID нет в корзине.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrEmptyCart — попытка checkout пустой или отсутствующей корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartVersionConflict сигнализирует о конфликте версий при записи корзины.
	ErrCartVersionConflict = errors.New("cart version conflict")
	// ErrStoreUnavailable — инфраструктурная ошибка key-value хранилища.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrOrderCreation — внешний вызов создания заказа завершился неудачей; корзина сохранена.
	ErrOrderCreation = errors.New("order creation failed")
	// ErrOrderNotFound возвращается, если заказ не найден в архиве.
	ErrOrderNotFound = errors.New("order not found")
	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой хеш запроса для idempotency-записи.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyNotFound — записи с таким ключом нет.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyKeyAlreadyExists — запись уже создана; обработка идёт или завершена.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ повторно использован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key reused with different request")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий корзины.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrCartVersionConflict)
}

// IsRetryable сообщает, имеет ли смысл повторять checkout после этой ошибки.
// Пустая корзина и ошибки валидации терминальны, сбой внешнего вызова — нет.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOrderCreation) || errors.Is(err, ErrStoreUnavailable)
}
