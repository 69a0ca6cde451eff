package kafka

import (
	"time"

	"shopcart/internal/cart"
)

const (
	Topic = `cart-service.cart-changed`
)

// CartChangedEvent is the record value published for every applied cart mutation.
type CartChangedEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   int32     `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewCartChangedEvent(change cart.Change) CartChangedEvent {
	return CartChangedEvent{
		ID:         change.ID,
		Kind:       string(change.Kind),
		ProductID:  change.ProductID,
		Quantity:   change.Quantity,
		OccurredAt: change.At,
	}
}

// key partitions by product so changes to one line stay ordered; clears use a fixed key.
func (e CartChangedEvent) key() []byte {
	if e.ProductID == "" {
		return []byte("cart")
	}
	return []byte(e.ProductID)
}
