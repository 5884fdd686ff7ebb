package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/restaurant-platform/cart-service/internal/domain"
)

const opTimeout = 5 * time.Second

type orderArchive struct {
	db *sql.DB
}

// NewOrderArchive создаёт PostgreSQL-реализацию OrderArchive.
func NewOrderArchive(store *Store) domain.OrderArchive {
	return &orderArchive{db: store.DB()}
}

// Record сохраняет результат checkout. Повторная запись того же заказа
// перезаписывает шапку и строки (идемпотентно для повторов координатора).
func (a *orderArchive) Record(result domain.CheckoutResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_orders (order_id, table_id, user_id, total_minor, status, confirmed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (order_id) DO UPDATE SET
			total_minor = EXCLUDED.total_minor,
			status = EXCLUDED.status,
			confirmed_at = EXCLUDED.confirmed_at
	`,
		result.OrderID, result.Identity.TableID, result.Identity.UserID,
		result.TotalMinor, string(result.Status), result.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM checkout_order_items WHERE order_id = $1`, result.OrderID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}

	for _, item := range result.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO checkout_order_items (id, order_id, menu_item_id, item_name, price_minor, qty, note, added_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			item.ID, result.OrderID, item.MenuItemID, item.ItemName,
			item.PriceMinor, item.Qty, item.Note, item.AddedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit record order: %w", err)
	}

	return nil
}

// Get возвращает сохранённый заказ со строками или ErrOrderNotFound.
func (a *orderArchive) Get(orderID string) (domain.CheckoutResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var result domain.CheckoutResult
	var status string

	err := a.db.QueryRowContext(ctx, `
		SELECT order_id, table_id, user_id, total_minor, status, confirmed_at
		FROM checkout_orders
		WHERE order_id = $1
	`, orderID).Scan(
		&result.OrderID, &result.Identity.TableID, &result.Identity.UserID,
		&result.TotalMinor, &status, &result.ConfirmedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CheckoutResult{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.CheckoutResult{}, fmt.Errorf("select order: %w", err)
	}
	result.Status = domain.CheckoutStatus(status)

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, menu_item_id, item_name, price_minor, qty, note, added_at
		FROM checkout_order_items
		WHERE order_id = $1
		ORDER BY added_at, id
	`, orderID)
	if err != nil {
		return domain.CheckoutResult{}, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.MenuItemID, &item.ItemName, &item.PriceMinor, &item.Qty, &item.Note, &item.AddedAt); err != nil {
			return domain.CheckoutResult{}, fmt.Errorf("scan order item: %w", err)
		}
		result.Items = append(result.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.CheckoutResult{}, fmt.Errorf("iterate order items: %w", err)
	}

	return result, nil
}

var _ domain.OrderArchive = (*orderArchive)(nil)
