package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

// Машиночитаемые коды причин для клиента. Самое важное различие —
// CartNotFound ("корзина пропала, начните заново") против
// OrderCreationFailed ("заказ мог пройти, проверьте заказы перед повтором").
const (
	reasonValidation          = "ValidationError"
	reasonCartNotFound        = "CartNotFound"
	reasonItemNotFound        = "ItemNotFound"
	reasonOrderNotFound       = "OrderNotFound"
	reasonEmptyCart           = "EmptyCart"
	reasonOrderCreationFailed = "OrderCreationFailed"
	reasonStoreUnavailable    = "StoreUnavailable"
	reasonIdempotencyConflict = "IdempotencyConflict"
	reasonTimeout             = "Timeout"
	reasonInternal            = "Internal"
)

// writeError переводит типизированные ошибки ядра в HTTP-статусы.
// Само отображение живёт только здесь, вне движка и координатора.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQtyInvalid),
		errors.Is(err, domain.ErrMenuItemRequired),
		errors.Is(err, domain.ErrPriceNegative),
		errors.Is(err, domain.ErrUserRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": reasonValidation})
	case errors.Is(err, domain.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": reasonCartNotFound})
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": reasonItemNotFound})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": reasonOrderNotFound})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": reasonEmptyCart})
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists),
		errors.Is(err, domain.ErrIdempotencyHashMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": reasonIdempotencyConflict})
	case errors.Is(err, domain.ErrOrderCreation):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     err.Error(),
			"reason":    reasonOrderCreationFailed,
			"retryable": true,
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "reason": reasonStoreUnavailable})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error(), "reason": reasonTimeout})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "reason": reasonInternal})
	}
}
