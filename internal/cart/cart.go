package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// SnapshotKey - ключ слота, под которым хранится корзина
const SnapshotKey = "cart"

// Product - данные товара, с которыми он кладётся в корзину
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
}

// LineItem - позиция корзины: товар и его количество
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal - стоимость позиции
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// State - неизменяемая копия содержимого корзины
type State struct {
	Lines []LineItem
}

// TotalItems - сумма количеств по всем позициям
func (s State) TotalItems() int {
	return totalItems(s.Lines)
}

// TotalPrice - сумма unitPrice * quantity по всем позициям
func (s State) TotalPrice() decimal.Decimal {
	return totalPrice(s.Lines)
}

func totalItems(lines []LineItem) int {
	var n int
	for _, li := range lines {
		n += li.Quantity
	}

	return n
}

func totalPrice(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range lines {
		total = total.Add(li.Subtotal())
	}

	return total
}

// Op - вид изменения корзины
type Op string

const (
	OpLoad   Op = "load"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Change - уведомление подписчику об изменении корзины
type Change struct {
	Op        Op
	ProductID string
	State     State
}

// Listener получает уведомления после каждого изменения корзины.
// Вызывается синхронно под блокировкой стора, поэтому не должен обращаться к стору.
type Listener interface {
	OnChange(c Change)
}

// ListenerFunc позволяет использовать функцию как Listener
type ListenerFunc func(c Change)

func (f ListenerFunc) OnChange(c Change) {
	f(c)
}

// SnapshotStorage - слот, из которого корзина восстанавливается и в который сохраняется.
// Read возвращает errors.ErrNotFound, если снимка ещё нет.
type SnapshotStorage interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, snapshot string) error
}

// CartStore - операции над корзиной одного посетителя
type CartStore interface {
	// AddItem добавляет товар или увеличивает количество уже лежащего в корзине
	AddItem(p Product, quantity int)
	// UpdateQuantity выставляет количество позиции, значения меньше 1 игнорируются
	UpdateQuantity(id string, quantity int)
	// RemoveItem удаляет позицию, если она есть
	RemoveItem(id string)
	// Clear очищает корзину
	Clear()
	// GetQuantity возвращает количество товара в корзине или 0
	GetQuantity(id string) int
	// Contains проверяет, лежит ли товар в корзине
	Contains(id string) bool
	// Lines возвращает копию позиций в порядке добавления
	Lines() []LineItem
	TotalItems() int
	TotalPrice() decimal.Decimal
	State() State
	Ready() bool
}

// Provider выдаёт корзину посетителя по его scope
type Provider interface {
	// Acquire возвращает корзину, release отпускает её по окончании запроса
	Acquire(ctx context.Context, scope string) (store CartStore, release func())
}
