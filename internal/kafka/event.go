package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeSearch    EventType = "search"
	EventTypeView      EventType = "view"
	EventTypeAddToCart EventType = "addToCart"
	EventTypePurchase  EventType = "purchase"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeSearch, EventTypeView, EventTypeAddToCart, EventTypePurchase:
		return true
	}
	return false
}

// Event - действие посетителя витрины. ScopeID - id его анонимной сессии.
type Event struct {
	ScopeID    string          `json:"scope_id"`
	Type       EventType       `json:"type"`
	ProductIDs []string        `json:"product_ids,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Timestamp  time.Time       `json:"timestamp"`
}

func NewSearchEvent(scopeID string, productIDs []string) Event {
	return Event{ScopeID: scopeID, Type: EventTypeSearch, ProductIDs: productIDs, Timestamp: time.Now().UTC()}
}

func NewViewEvent(scopeID, productID string) Event {
	return Event{ScopeID: scopeID, Type: EventTypeView, ProductIDs: []string{productID}, Timestamp: time.Now().UTC()}
}

func NewAddToCartEvent(scopeID, productID string, quantity int) Event {
	return Event{
		ScopeID:    scopeID,
		Type:       EventTypeAddToCart,
		ProductIDs: []string{productID},
		Quantity:   quantity,
		Timestamp:  time.Now().UTC(),
	}
}

func NewPurchaseEvent(scopeID string, productIDs []string, quantity int, total decimal.Decimal) Event {
	return Event{
		ScopeID:    scopeID,
		Type:       EventTypePurchase,
		ProductIDs: productIDs,
		Quantity:   quantity,
		Total:      total,
		Timestamp:  time.Now().UTC(),
	}
}
