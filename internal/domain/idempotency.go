package domain

import "time"

// IdempotencyStatus описывает жизненный цикл ключа идемпотентности checkout.
type IdempotencyStatus string

const (
	// IdempotencyStatusProcessing означает, что checkout с этим ключом принят и ещё выполняется.
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	// IdempotencyStatusDone означает, что checkout завершён и результат сохранён для повторной выдачи.
	IdempotencyStatusDone IdempotencyStatus = "done"
	// IdempotencyStatusFailed означает, что checkout завершился ошибкой; повтор с тем же ключом разрешён.
	IdempotencyStatusFailed IdempotencyStatus = "failed"
)

// IdempotencyRecord хранит состояние обработки checkout по idempotency-key.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	// OrderID заполняется после успешного создания заказа и выдаётся при повторе.
	OrderID    string
	TotalMinor int64
	Status     IdempotencyStatus
	TTLAt      time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s IdempotencyStatus) Valid() bool {
	switch s {
	case IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed:
		return true
	default:
		return false
	}
}
