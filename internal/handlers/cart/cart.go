package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/contextutil"
	"storefront/internal/kafka"
	myErr "storefront/internal/types/errors"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartHandler ручки корзины посетителя. Scope берётся из сессии в контексте.
type CartHandler struct {
	Logger        *zap.SugaredLogger
	Carts         cart.Provider
	Catalog       catalog.Catalog
	EventProducer kafka.EventProducer
}

// NewCartHandler конструктор
func NewCartHandler(
	log *zap.SugaredLogger,
	carts cart.Provider,
	c catalog.Catalog,
	ep kafka.EventProducer,
) *CartHandler {
	return &CartHandler{
		Logger:        log,
		Carts:         carts,
		Catalog:       c,
		EventProducer: ep,
	}
}

type LineView struct {
	cart.LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView - то, что видит клиент: позиции и производные итоги
type CartView struct {
	Items      []LineView      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func NewCartView(s cart.State) CartView {
	items := make([]LineView, 0, len(s.Lines))
	for _, li := range s.Lines {
		items = append(items, LineView{LineItem: li, Subtotal: li.Subtotal()})
	}

	return CartView{
		Items:      items,
		TotalItems: s.TotalItems(),
		TotalPrice: s.TotalPrice(),
	}
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type ItemStatus struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	InCart   bool   `json:"in_cart"`
}

type CheckoutResponse struct {
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Items  int             `json:"items"`
}

// GetCart - GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, release, ok := h.store(w, r)
	if !ok {
		return
	}
	defer release()

	h.writeJSON(w, http.StatusOK, NewCartView(store.State()))
}

// AddItem - POST /api/cart/items
// Данные товара берутся из каталога, клиент передаёт только id и количество.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	scope, store, release, ok := h.scopedStore(w, r)
	if !ok {
		return
	}
	defer release()
	if !h.writable(w, store) {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}
	if req.ProductID == "" {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		myErr.SendErrorTo(w, myErr.ErrInvalidAmount, http.StatusBadRequest, h.Logger)
		return
	}

	p, err := h.Catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		myErr.SendErrorTo(w, err, CatalogErrorStatus(err), h.Logger)
		return
	}

	store.AddItem(cart.Product{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
	}, quantity)

	if err := h.EventProducer.SendEvent(r.Context(), kafka.NewAddToCartEvent(scope, p.ID, quantity)); err != nil {
		h.Logger.Warnf("failed to send addToCart event: %v", err)
	}

	h.Logger.Infow("added product to cart", "scope", scope, "product", p.ID, "quantity", quantity)
	h.writeJSON(w, http.StatusCreated, NewCartView(store.State()))
}

// GetItem - GET /api/cart/items/{id}
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	store, release, ok := h.store(w, r)
	if !ok {
		return
	}
	defer release()

	id := mux.Vars(r)["id"]
	h.writeJSON(w, http.StatusOK, ItemStatus{
		ID:       id,
		Quantity: store.GetQuantity(id),
		InCart:   store.Contains(id),
	})
}

// UpdateItem - PUT /api/cart/items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	store, release, ok := h.store(w, r)
	if !ok {
		return
	}
	defer release()
	if !h.writable(w, store) {
		return
	}

	id := mux.Vars(r)["id"]

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}
	if req.Quantity < 1 {
		myErr.SendErrorTo(w, myErr.ErrInvalidAmount, http.StatusBadRequest, h.Logger)
		return
	}
	if !store.Contains(id) {
		myErr.SendErrorTo(w, myErr.ErrNotFound, http.StatusNotFound, h.Logger)
		return
	}

	store.UpdateQuantity(id, req.Quantity)
	h.writeJSON(w, http.StatusOK, NewCartView(store.State()))
}

// RemoveItem - DELETE /api/cart/items/{id}. Удаление отсутствующей позиции не ошибка.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, release, ok := h.store(w, r)
	if !ok {
		return
	}
	defer release()
	if !h.writable(w, store) {
		return
	}

	store.RemoveItem(mux.Vars(r)["id"])
	h.writeJSON(w, http.StatusOK, NewCartView(store.State()))
}

// ClearCart - DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, release, ok := h.store(w, r)
	if !ok {
		return
	}
	defer release()
	if !h.writable(w, store) {
		return
	}

	store.Clear()
	h.writeJSON(w, http.StatusOK, NewCartView(store.State()))
}

// Checkout - POST /api/cart/checkout
// Оплаты нет: фиксируем итог, очищаем корзину и отправляем событие purchase.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	scope, store, release, ok := h.scopedStore(w, r)
	if !ok {
		return
	}
	defer release()
	if !h.writable(w, store) {
		return
	}

	state := store.State()
	if len(state.Lines) == 0 {
		myErr.SendErrorTo(w, myErr.ErrEmptyCart, http.StatusBadRequest, h.Logger)
		return
	}

	ids := make([]string, 0, len(state.Lines))
	for _, li := range state.Lines {
		ids = append(ids, li.ID)
	}
	total := state.TotalPrice()
	items := state.TotalItems()

	store.Clear()

	if err := h.EventProducer.SendEvent(r.Context(), kafka.NewPurchaseEvent(scope, ids, items, total)); err != nil {
		h.Logger.Warnf("failed to send purchase event: %v", err)
	}

	h.Logger.Infof("scope %s checked out %d items for total %s", scope, items, total.StringFixed(2))
	h.writeJSON(w, http.StatusOK, CheckoutResponse{
		Status: "success",
		Total:  total,
		Items:  items,
	})
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (cart.CartStore, func(), bool) {
	_, store, release, ok := h.scopedStore(w, r)
	return store, release, ok
}

// scopedStore берёт корзину посетителя, release нужно вызвать по окончании запроса
func (h *CartHandler) scopedStore(w http.ResponseWriter, r *http.Request) (string, cart.CartStore, func(), bool) {
	scope, ok := contextutil.GetScopeFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return "", nil, nil, false
	}

	store, release := h.Carts.Acquire(r.Context(), scope)
	return scope, store, release, true
}

// writable - корзина восстановлена из слота и изменения будут сохранены.
// Пока слот недоступен, менять корзину нельзя, иначе пустая корзина затрёт снимок.
func (h *CartHandler) writable(w http.ResponseWriter, store cart.CartStore) bool {
	if store.Ready() {
		return true
	}

	myErr.SendErrorTo(w, myErr.ErrCartUnavailable, http.StatusServiceUnavailable, h.Logger)
	return false
}

func (h *CartHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}

// CatalogErrorStatus переводит ошибку каталога в HTTP-статус
func CatalogErrorStatus(err error) int {
	switch {
	case errors.Is(err, myErr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, myErr.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, myErr.ErrCatalogResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
