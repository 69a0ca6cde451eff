package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcart/internal/cart"
)

func TestNewCartChangedEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := NewCartChangedEvent(cart.Change{ID: "c1", Kind: cart.ChangeAdjusted, ProductID: "p1", Quantity: 3, At: at})

	assert.Equal(t, "p1", string(e.key()))
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","kind":"adjusted","product_id":"p1","quantity":3,"occurred_at":"2024-05-01T12:00:00Z"}`, string(b))
}

func TestCartChangedEvent_ClearKey(t *testing.T) {
	e := NewCartChangedEvent(cart.Change{ID: "c2", Kind: cart.ChangeCleared})
	assert.Equal(t, "cart", string(e.key()))
}

func TestNewConf_RequiresBrokers(t *testing.T) {
	_, err := NewConf(nil, "")
	assert.Error(t, err)
}
