package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

const defaultRequestTimeout = 10 * time.Second

// Client — HTTP-клиент внешнего сервиса создания заказов.
type Client struct {
	url    string
	http   *http.Client
	logger *log.Entry
}

// NewClient создаёт клиент для абсолютного URL создания заказа.
func NewClient(url string) (*Client, error) {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("invalid order service url %q: absolute http(s) URL required", url)
	}

	return &Client{
		url:    url,
		http:   &http.Client{Timeout: defaultRequestTimeout},
		logger: log.WithField("component", "order-client"),
	}, nil
}

// wireItem — формат позиции, который ожидает order-service.
type wireItem struct {
	ItemID    int64  `json:"itemId"`
	ItemName  string `json:"itemName"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Note      string `json:"note,omitempty"`
}

type wireRequest struct {
	Items       []wireItem `json:"items"`
	TotalAmount int64      `json:"totalAmount"`
}

type wireResponse struct {
	OrderID string `json:"orderId"`
}

// CreateOrder отправляет снимок корзины в order-service.
// Идентичность передаётся заголовками X-User-Id / X-Table-Name, как ожидает пайплайн заказов.
func (c *Client) CreateOrder(req domain.CreateOrderRequest) (string, error) {
	items := make([]wireItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, wireItem{
			ItemID:    item.MenuItemID,
			ItemName:  item.ItemName,
			Quantity:  item.Qty,
			UnitPrice: item.PriceMinor,
			Note:      item.Note,
		})
	}

	payload, err := json.Marshal(wireRequest{Items: items, TotalAmount: req.TotalMinor})
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-User-Id", req.Identity.UserID)
	table := req.Identity.TableID
	if table == "" {
		table = "default"
	}
	httpReq.Header.Set("X-Table-Name", table)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).WithField("url", c.url).Warn("order service call failed")
		return "", fmt.Errorf("%w: %v", domain.ErrOrderCreation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(log.Fields{
			"url":    c.url,
			"status": resp.StatusCode,
		}).Warn("order service rejected the order")
		return "", fmt.Errorf("%w: status %d", domain.ErrOrderCreation, resp.StatusCode)
	}

	var decoded wireResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		// 2xx без распознаваемого тела: заказ создан, идентификатор назначит координатор.
		c.logger.WithError(err).Debug("order service returned unparsable body")
		return "", nil
	}
	return decoded.OrderID, nil
}

var _ domain.OrderClient = (*Client)(nil)
