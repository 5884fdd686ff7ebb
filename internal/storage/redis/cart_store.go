package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

// cartStoreRedis — Redis-реализация CartStore.
// Значение — JSON-сериализованная корзина под ключом cart:{tableId}:{userId}.
type cartStoreRedis struct {
	client *goredis.Client
	// ttl > 0 включает истечение брошенных корзин; 0 — без TTL.
	ttl time.Duration
}

// NewCartStore создаёт Redis-хранилище корзин.
func NewCartStore(store *Store, ttl time.Duration) domain.CartStore {
	return &cartStoreRedis{client: store.Client(), ttl: ttl}
}

// storedCart — сериализуемое представление корзины в хранилище.
type storedCart struct {
	CartID    string       `json:"cartId"`
	TableID   string       `json:"tableId"`
	UserID    string       `json:"userId"`
	Items     []storedItem `json:"items"`
	Version   int64        `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type storedItem struct {
	ID         string    `json:"id"`
	MenuItemID int64     `json:"menuItemId"`
	ItemName   string    `json:"itemName"`
	PriceMinor int64     `json:"price"`
	Quantity   int32     `json:"quantity"`
	Note       string    `json:"note,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}

func (s *cartStoreRedis) Get(identity domain.Identity) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, identity.Key()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%w: get %s: %v", domain.ErrStoreUnavailable, identity.Key(), err)
	}

	return decodeCart(raw)
}

// Put перезаписывает корзину целиком. Проверка версии выполняется через
// WATCH: если ключ изменился между чтением и записью, транзакция
// отклоняется и возвращается ErrCartVersionConflict.
func (s *cartStoreRedis) Put(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	key := cart.Identity.Key()

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
			if cart.Version != 0 {
				return domain.ErrCartNotFound
			}
		case err != nil:
			return fmt.Errorf("%w: get %s: %v", domain.ErrStoreUnavailable, key, err)
		default:
			current, decErr := decodeCart(raw)
			if decErr != nil {
				return decErr
			}
			if current.Version != cart.Version {
				return domain.ErrCartVersionConflict
			}
		}

		next := cart
		next.Version++
		payload, err := json.Marshal(encodeCart(next))
		if err != nil {
			return fmt.Errorf("marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, goredis.TxFailedErr) {
		return domain.ErrCartVersionConflict
	}
	if err != nil && !errors.Is(err, domain.ErrCartVersionConflict) && !errors.Is(err, domain.ErrCartNotFound) &&
		!errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%w: put %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return err
}

func (s *cartStoreRedis) Delete(identity domain.Identity) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	// DEL отсутствующего ключа в Redis и так no-op.
	if err := s.client.Del(ctx, identity.Key()).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", domain.ErrStoreUnavailable, identity.Key(), err)
	}
	return nil
}

func encodeCart(cart domain.Cart) storedCart {
	items := make([]storedItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, storedItem{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			ItemName:   item.ItemName,
			PriceMinor: item.PriceMinor,
			Quantity:   item.Qty,
			Note:       item.Note,
			AddedAt:    item.AddedAt,
		})
	}
	return storedCart{
		CartID:    cart.CartID,
		TableID:   cart.Identity.TableID,
		UserID:    cart.Identity.UserID,
		Items:     items,
		Version:   cart.Version,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

func decodeCart(raw []byte) (domain.Cart, error) {
	var stored storedCart
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart: %w", err)
	}

	items := make([]domain.CartItem, 0, len(stored.Items))
	for _, item := range stored.Items {
		items = append(items, domain.CartItem{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			ItemName:   item.ItemName,
			PriceMinor: item.PriceMinor,
			Qty:        item.Quantity,
			Note:       item.Note,
			AddedAt:    item.AddedAt,
		})
	}
	return domain.Cart{
		CartID:    stored.CartID,
		Identity:  domain.Identity{TableID: stored.TableID, UserID: stored.UserID},
		Items:     items,
		Version:   stored.Version,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

var _ domain.CartStore = (*cartStoreRedis)(nil)
