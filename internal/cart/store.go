package cart

import (
	"context"
	"errors"
	"sync"

	myErr "storefront/internal/types/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store - корзина одного посетителя.
// Все операции выполняются целиком под мьютексом, по одной за раз.
type Store struct {
	Logger *zap.SugaredLogger

	mu        sync.Mutex
	lines     []LineItem
	index     map[string]int
	ready     bool
	listeners []subscription
	nextID    int
}

type subscription struct {
	id       int
	listener Listener
}

func NewStore(logger *zap.SugaredLogger) *Store {
	return &Store{
		Logger: logger,
		index:  make(map[string]int),
	}
}

// Load восстанавливает корзину из слота.
// Ошибок не возвращает: при отсутствии или порче снимка корзина остаётся пустой.
// Если слот не прочитался, корзина остаётся пустой и не готовой: подписчики
// не вызываются, чтобы не затереть сохранённый снимок.
func (s *Store) Load(ctx context.Context, storage SnapshotStorage) {
	var lines []LineItem

	raw, err := storage.Read(ctx)
	switch {
	case errors.Is(err, myErr.ErrNotFound):
		s.Logger.Debugw("no cart snapshot, starting empty")
	case err != nil:
		s.Logger.Warnw("failed to read cart snapshot, cart is not ready", "err", err)
		return
	default:
		res := DecodeSnapshot(raw)
		if !res.OK() {
			s.Logger.Warnw("error parsing cart data, starting empty", "err", res.Err)
			break
		}
		if res.Skipped > 0 {
			s.Logger.Warnw("skipped invalid cart lines", "count", res.Skipped)
		}
		lines = res.Lines
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.index = make(map[string]int, len(lines))
	for _, li := range lines {
		s.index[li.ID] = len(s.lines)
		s.lines = append(s.lines, li)
	}
	s.ready = true

	s.notify(OpLoad, "")
}

// Ready - корзина восстановлена из слота
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ready
}

// Subscribe добавляет подписчика, возвращает функцию отписки
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, listener: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// AddItem добавляет товар в корзину.
// Если товар уже есть, меняется только количество: имя, цена и картинка остаются прежними.
func (s *Store) AddItem(p Product, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[p.ID]; ok {
		s.lines[i].Quantity += quantity
	} else {
		s.index[p.ID] = len(s.lines)
		s.lines = append(s.lines, LineItem{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Image:     p.Image,
			Quantity:  quantity,
		})
	}

	s.notify(OpAdd, p.ID)
}

// UpdateQuantity выставляет количество позиции.
// Количество меньше 1 и неизвестный id игнорируются, удаление идёт через RemoveItem.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok || s.lines[i].Quantity == quantity {
		return
	}
	s.lines[i].Quantity = quantity

	s.notify(OpUpdate, id)
}

// RemoveItem удаляет позицию, если она есть
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return
	}

	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].ID] = j
	}

	s.notify(OpRemove, id)
}

// Clear очищает корзину
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	s.lines = nil
	s.index = make(map[string]int)

	s.notify(OpClear, "")
}

func (s *Store) GetQuantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[id]; ok {
		return s.lines[i].Quantity
	}

	return 0
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[id]
	return ok
}

func (s *Store) Lines() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyLines()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return totalItems(s.lines)
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return totalPrice(s.lines)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{Lines: s.copyLines()}
}

func (s *Store) copyLines() []LineItem {
	out := make([]LineItem, len(s.lines))
	copy(out, s.lines)

	return out
}

// notify вызывается под s.mu. До загрузки подписчики не уведомляются,
// чтобы пустая корзина не перезаписала сохранённый снимок.
func (s *Store) notify(op Op, productID string) {
	if !s.ready || len(s.listeners) == 0 {
		return
	}

	c := Change{
		Op:        op,
		ProductID: productID,
		State:     State{Lines: s.copyLines()},
	}
	for _, sub := range s.listeners {
		sub.listener.OnChange(c)
	}
}
