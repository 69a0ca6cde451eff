// Package screen holds the coordinators behind the listing, detail and
// cart-review screens. Coordinators keep no cart state of their own beyond a
// display cache that is rebuilt from the cart service after every change.
package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shopcart/internal/cart"
	"shopcart/internal/catalog"
	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

// ErrUnknownProduct is returned when a product id is not in the loaded catalog.
var ErrUnknownProduct = errors.New("product is not in the catalog")

// Cart is the part of the cart service the coordinators depend on.
type Cart interface {
	AddToCart(ctx context.Context, p catalog.Product) error
	Increment(ctx context.Context, productID string) (int32, error)
	Decrement(ctx context.Context, productID string) (int32, error)
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	GetAll(ctx context.Context) ([]cart.Line, error)
	GetLine(ctx context.Context, productID string) (*cart.Line, error)
	GetTotal(ctx context.Context) float64
	GetCartedIDs(ctx context.Context) cart.IDSet
	GetState(ctx context.Context) (cart.State, error)
	Subscribe() (<-chan cart.Change, func())
}

type Catalog interface {
	FetchCatalogPage(ctx context.Context) ([]catalog.Product, error)
	FetchSuggested(ctx context.Context) ([]catalog.Product, error)
}

// Snapshot is the cart state a screen last rendered.
type Snapshot struct {
	Lines       []cart.Line      `json:"lines"`
	Total       float64          `json:"total"`
	CartedIDs   []string         `json:"cartedIds"`
	Quantities  map[string]int32 `json:"quantities"`
	RefreshedAt time.Time        `json:"refreshedAt"`
}

func (s Snapshot) QuantityOf(productID string) (int32, bool) {
	q, ok := s.Quantities[productID]
	return q, ok
}

// display is the cache shared by every coordinator.
type display struct {
	name string
	cart Cart

	mu   sync.RWMutex
	snap Snapshot
}

func newDisplay(name string, c Cart) display {
	return display{name: name, cart: c, snap: Snapshot{Quantities: map[string]int32{}}}
}

// Refresh re-reads lines, total and carted ids as one state. On failure the
// previous snapshot is kept.
func (d *display) Refresh(ctx context.Context) error {
	state, err := d.cart.GetState(ctx)
	if err != nil {
		slog.Warn("screen refresh failed", slog.String(logkey.TraceID, ctxmanage.TraceIDFromContext(ctx)),
			slog.String(logkey.Screen, d.name), slog.String(logkey.ERROR, err.Error()))
		return fmt.Errorf("refresh %s: %w", d.name, err)
	}
	quantities := make(map[string]int32, len(state.Lines))
	for _, l := range state.Lines {
		quantities[l.ProductID] = l.Quantity
	}

	d.mu.Lock()
	d.snap = Snapshot{
		Lines:       state.Lines,
		Total:       state.Total,
		CartedIDs:   state.IDs.Sorted(),
		Quantities:  quantities,
		RefreshedAt: time.Now().UTC(),
	}
	d.mu.Unlock()
	return nil
}

func (d *display) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Watch refreshes the display on every cart change until ctx is done or the
// cart service shuts down. Changes that arrive while a refresh is running are
// coalesced into the next refresh.
func (d *display) Watch(ctx context.Context) {
	changes, cancel := d.cart.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			_ = d.Refresh(ctx)
		}
	}
}

func (d *display) increase(ctx context.Context, productID string) (int32, error) {
	q, err := d.cart.Increment(ctx, productID)
	if err != nil {
		return 0, d.fail(ctx, "increase", productID, err)
	}
	_ = d.Refresh(ctx)
	return q, nil
}

// decrease lowers the quantity by one and deletes the line once it reaches zero.
// The decrement and the delete run to completion even if ctx ends first, so a
// zero-quantity line is never left behind.
func (d *display) decrease(ctx context.Context, productID string) (int32, error) {
	opCtx := context.WithoutCancel(ctx)
	q, err := d.cart.Decrement(opCtx, productID)
	if err != nil {
		return 0, d.fail(ctx, "decrease", productID, err)
	}
	if q == 0 {
		if err := d.cart.Remove(opCtx, productID); err != nil {
			return 0, d.fail(ctx, "remove", productID, err)
		}
	}
	_ = d.Refresh(ctx)
	return q, nil
}

func (d *display) add(ctx context.Context, p catalog.Product) error {
	if err := d.cart.AddToCart(ctx, p); err != nil {
		return d.fail(ctx, "add", p.ID, err)
	}
	_ = d.Refresh(ctx)
	return nil
}

func (d *display) remove(ctx context.Context, productID string) error {
	if err := d.cart.Remove(ctx, productID); err != nil {
		return d.fail(ctx, "remove", productID, err)
	}
	_ = d.Refresh(ctx)
	return nil
}

func (d *display) fail(ctx context.Context, op, productID string, err error) error {
	slog.Error("cart operation failed", slog.String(logkey.TraceID, ctxmanage.TraceIDFromContext(ctx)),
		slog.String(logkey.Screen, d.name), slog.String(logkey.Op, op),
		slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
	return fmt.Errorf("%s %s: %w", op, productID, err)
}
