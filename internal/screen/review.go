package screen

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"shopcart/internal/cart"
	"shopcart/internal/catalog"
	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

// CartReview drives the cart screen: the lines, the total and the suggested products.
type CartReview struct {
	display
	catalog Catalog
	index   *catalog.Index

	mu        sync.RWMutex
	suggested []catalog.Product
}

type CartView struct {
	Lines     []cart.Line       `json:"lines"`
	Total     float64           `json:"total"`
	Suggested []catalog.Product `json:"suggested"`
	Empty     bool              `json:"empty"`
}

func NewCartReview(c Cart, cat Catalog, index *catalog.Index) *CartReview {
	return &CartReview{
		display: newDisplay("cart", c),
		catalog: cat,
		index:   index,
	}
}

// Load refreshes the lines and fetches suggested products. A failed
// suggestion fetch leaves the strip empty and is not an error.
func (r *CartReview) Load(ctx context.Context) error {
	if r.catalog != nil {
		suggested, err := r.catalog.FetchSuggested(ctx)
		if err != nil {
			slog.Warn("suggested products unavailable", slog.String(logkey.TraceID, ctxmanage.TraceIDFromContext(ctx)),
				slog.String(logkey.Screen, r.name), slog.String(logkey.ERROR, err.Error()))
		} else {
			r.index.Put(suggested...)
			r.mu.Lock()
			r.suggested = suggested
			r.mu.Unlock()
		}
	}
	return r.Refresh(ctx)
}

// View lists the lines sorted by product name.
func (r *CartReview) View() CartView {
	snap := r.Snapshot()
	lines := make([]cart.Line, len(snap.Lines))
	copy(lines, snap.Lines)
	sort.SliceStable(lines, func(i, j int) bool {
		return strings.ToLower(lines[i].Name) < strings.ToLower(lines[j].Name)
	})

	r.mu.RLock()
	defer r.mu.RUnlock()
	return CartView{
		Lines:     lines,
		Total:     snap.Total,
		Suggested: r.suggested,
		Empty:     len(lines) == 0,
	}
}

func (r *CartReview) Increase(ctx context.Context, productID string) (int32, error) {
	return r.increase(ctx, productID)
}

func (r *CartReview) Decrease(ctx context.Context, productID string) (int32, error) {
	return r.decrease(ctx, productID)
}

// Delete removes the line regardless of its quantity.
func (r *CartReview) Delete(ctx context.Context, productID string) error {
	return r.remove(ctx, productID)
}

// AddSuggested puts a suggested product into the cart.
func (r *CartReview) AddSuggested(ctx context.Context, productID string) error {
	p, ok := r.index.Lookup(productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return r.add(ctx, p)
}

func (r *CartReview) Clear(ctx context.Context) error {
	if err := r.cart.Clear(ctx); err != nil {
		return r.fail(ctx, "clear", "", err)
	}
	_ = r.Refresh(ctx)
	return nil
}

// CompleteOrder is accepted and ignored; checkout is handled elsewhere.
func (r *CartReview) CompleteOrder(ctx context.Context) {
	slog.Info("complete order requested", slog.String(logkey.TraceID, ctxmanage.TraceIDFromContext(ctx)),
		slog.String(logkey.Screen, r.name), slog.Float64("Total", r.Snapshot().Total))
}
