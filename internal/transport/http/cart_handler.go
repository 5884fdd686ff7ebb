package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/restaurant-platform/cart-service/internal/domain"
	"github.com/restaurant-platform/cart-service/internal/service/cart"
	"github.com/restaurant-platform/cart-service/internal/service/checkout"
)

// CartHandler отображает HTTP-запросы на вызовы движка и координатора.
// Всё транспортное (заголовки, статусы, DTO) живёт здесь.
type CartHandler struct {
	engine      *cart.Engine
	coordinator *checkout.Coordinator
	// store нужен только legacy-поверхности /cart/user-items,
	// которая ходит в хранилище напрямую, минуя движок.
	store  domain.CartStore
	logger *log.Entry
}

// NewCartHandler создаёт обработчик поверх движка и координатора.
func NewCartHandler(engine *cart.Engine, coordinator *checkout.Coordinator, store domain.CartStore, logger *log.Entry) *CartHandler {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	return &CartHandler{engine: engine, coordinator: coordinator, store: store, logger: logger}
}

type addItemRequest struct {
	MenuItemID int64  `json:"menuItemId" binding:"required"`
	ItemName   string `json:"itemName" binding:"required"`
	Price      int64  `json:"price"`
	Quantity   int32  `json:"quantity" binding:"required"`
	Note       string `json:"note"`
}

type updateItemRequest struct {
	// Указатель, чтобы отличить отсутствующее поле от честного нуля:
	// quantity: 0 — валидный запрос, эквивалентный удалению.
	Quantity *int32 `json:"quantity" binding:"required"`
}

type itemResponse struct {
	ID         string    `json:"id"`
	MenuItemID int64     `json:"menuItemId"`
	ItemName   string    `json:"itemName"`
	Price      int64     `json:"price"`
	Quantity   int32     `json:"quantity"`
	Note       string    `json:"note,omitempty"`
	Subtotal   int64     `json:"subtotal"`
	AddedAt    time.Time `json:"addedAt"`
}

type cartResponse struct {
	CartID      string         `json:"cartId"`
	TableID     string         `json:"tableId"`
	UserID      string         `json:"userId"`
	Items       []itemResponse `json:"items"`
	TotalAmount int64          `json:"totalAmount"`
	TotalItems  int32          `json:"totalItems"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type checkoutResponse struct {
	OrderID     string         `json:"orderId"`
	Status      string         `json:"status"`
	Items       []itemResponse `json:"items"`
	TotalAmount int64          `json:"totalAmount"`
	ConfirmedAt time.Time      `json:"confirmedAt"`
}

// Open обрабатывает POST /cart/open.
func (h *CartHandler) Open(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	opened, err := h.engine.OpenCart(identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartResponse(opened))
}

// Get обрабатывает GET /cart.
func (h *CartHandler) Get(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	current, err := h.engine.GetCart(identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(current))
}

// AddItem обрабатывает POST /cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": reasonValidation})
		return
	}

	line, err := h.engine.AddItem(identity, cart.AddItemInput{
		MenuItemID: req.MenuItemID,
		ItemName:   req.ItemName,
		PriceMinor: req.Price,
		Qty:        req.Quantity,
		Note:       req.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItemResponse(line))
}

// UpdateItem обрабатывает PUT /cart/items/:itemId.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": reasonValidation})
		return
	}

	line, removed, err := h.engine.UpdateItem(identity, c.Param("itemId"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	if removed {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(line))
}

// RemoveItem обрабатывает DELETE /cart/items/:itemId.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.engine.RemoveItem(identity, c.Param("itemId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout обрабатывает POST /cart/checkout.
func (h *CartHandler) Checkout(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.coordinator.Checkout(identity, c.GetHeader("Idempotency-Key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCheckoutResponse(result))
}

// GetOrder обрабатывает GET /cart/order/:orderId.
func (h *CartHandler) GetOrder(c *gin.Context) {
	result, err := h.coordinator.GetOrder(c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCheckoutResponse(result))
}

// LegacyGetUserItems обрабатывает GET /cart/user-items: строки корзины
// напрямую из key-value хранилища, без merge/валидации движка.
func (h *CartHandler) LegacyGetUserItems(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	current, err := h.store.Get(identity)
	if errors.Is(err, domain.ErrCartNotFound) {
		c.JSON(http.StatusOK, gin.H{"items": []itemResponse{}})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]itemResponse, 0, len(current.Items))
	for _, item := range current.Items {
		items = append(items, toItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// LegacyDeleteUserItems обрабатывает DELETE /cart/user-items: удаление
// всей корзины напрямую из хранилища. Идемпотентно.
func (h *CartHandler) LegacyDeleteUserItems(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.store.Delete(identity); err != nil {
		writeError(c, err)
		return
	}
	h.logger.WithField("key", identity.Key()).Info("корзина удалена через legacy-эндпоинт")
	c.Status(http.StatusNoContent)
}

func toItemResponse(item domain.CartItem) itemResponse {
	return itemResponse{
		ID:         item.ID,
		MenuItemID: item.MenuItemID,
		ItemName:   item.ItemName,
		Price:      item.PriceMinor,
		Quantity:   item.Qty,
		Note:       item.Note,
		Subtotal:   item.Subtotal(),
		AddedAt:    item.AddedAt,
	}
}

func toCartResponse(c domain.Cart) cartResponse {
	items := make([]itemResponse, 0, len(c.Items))
	var totalItems int32
	for _, item := range c.Items {
		items = append(items, toItemResponse(item))
		totalItems += item.Qty
	}
	return cartResponse{
		CartID:      c.CartID,
		TableID:     c.Identity.TableID,
		UserID:      c.Identity.UserID,
		Items:       items,
		TotalAmount: c.TotalMinor(),
		TotalItems:  totalItems,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCheckoutResponse(result domain.CheckoutResult) checkoutResponse {
	items := make([]itemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toItemResponse(item))
	}
	return checkoutResponse{
		OrderID:     result.OrderID,
		Status:      string(result.Status),
		Items:       items,
		TotalAmount: result.TotalMinor,
		ConfirmedAt: result.ConfirmedAt,
	}
}
