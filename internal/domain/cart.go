package domain

import (
	"fmt"
	"time"
)

// Identity однозначно определяет корзину: одна активная корзина на пару (стол, пользователь).
type Identity struct {
	TableID string
	UserID  string
}

// Key возвращает детерминированный ключ хранилища для идентичности.
// Повторный вывод ключа для той же пары всегда даёт то же место хранения.
func (id Identity) Key() string {
	table := id.TableID
	if table == "" {
		table = "default"
	}
	return fmt.Sprintf("cart:%s:%s", table, id.UserID)
}

// Validate проверяет, что идентичность заполнена.
func (id Identity) Validate() error {
	if id.UserID == "" {
		return ErrUserRequired
	}
	return nil
}

// CartItem представляет одну строку корзины.
type CartItem struct {
	// ID строки назначается при создании и используется для адресации update/remove.
	ID string
	// MenuItemID — внешний идентификатор позиции меню.
	MenuItemID int64
	// ItemName — снимок названия из каталога на момент добавления.
	ItemName string
	// PriceMinor — снимок цены за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Qty — количество, всегда >= 1; ноль и ниже означают удаление строки.
	Qty int32
	// Note — опциональный комментарий гостя к позиции.
	Note string
	// AddedAt фиксирует момент добавления строки.
	AddedAt time.Time
}

// Subtotal возвращает стоимость строки: qty * price.
func (i CartItem) Subtotal() int64 {
	return int64(i.Qty) * i.PriceMinor
}

// Cart агрегирует состояние корзины одной идентичности.
type Cart struct {
	// CartID — идентификатор, возвращаемый клиенту при открытии.
	CartID   string
	Identity Identity
	// Items упорядочены по вставке; порядок не влияет на сумму.
	Items []CartItem
	// Version используется для optimistic locking при записи в хранилище.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalMinor возвращает сумму корзины в минимальных единицах.
// Для пустой корзины возвращает 0.
func (c *Cart) TotalMinor() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// IsEmpty сообщает, что в корзине нет ни одной строки.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem возвращает индекс строки по её ID или -1.
func (c *Cart) FindItem(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// FindLine возвращает индекс строки с тем же menuItemId и той же заметкой или -1.
// Политика слияния: разные заметки дают отдельные строки.
func (c *Cart) FindLine(menuItemID int64, note string) int {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID && c.Items[i].Note == note {
			return i
		}
	}
	return -1
}

// Clone возвращает глубокую копию корзины, чтобы избежать мутаций извне.
func (c *Cart) Clone() Cart {
	dst := *c
	dst.Items = append([]CartItem(nil), c.Items...)
	return dst
}

// ValidateInvariants проверяет структурные инварианты корзины и возвращает список замечаний.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	if c.CartID == "" {
		errs = append(errs, ErrCartIDRequired)
	}
	if err := c.Identity.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, item := range c.Items {
		if item.MenuItemID <= 0 {
			errs = append(errs, ErrMenuItemRequired)
		}
		if item.Qty < 1 {
			errs = append(errs, ErrQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrPriceNegative)
		}
	}

	return errs
}
