package screen

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"shopcart/internal/catalog"
)

// Listing drives the product listing screen: the catalog page, the suggested
// products strip and an add/stepper control per product.
type Listing struct {
	display
	catalog Catalog
	index   *catalog.Index

	mu        sync.RWMutex
	products  []catalog.Product
	suggested []catalog.Product
}

type ListingView struct {
	Products  []catalog.Product `json:"products"`
	Suggested []catalog.Product `json:"suggested"`
	Snapshot
}

func NewListing(c Cart, cat Catalog, index *catalog.Index) *Listing {
	return &Listing{
		display: newDisplay("listing", c),
		catalog: cat,
		index:   index,
	}
}

// Load fetches the catalog page and the suggested products concurrently, then
// refreshes the cart state.
func (l *Listing) Load(ctx context.Context) error {
	var products, suggested []catalog.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.catalog.FetchCatalogPage(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		suggested, err = l.catalog.FetchSuggested(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load listing: %w", err)
	}

	l.index.Put(products...)
	l.index.Put(suggested...)

	l.mu.Lock()
	l.products, l.suggested = products, suggested
	l.mu.Unlock()

	return l.Refresh(ctx)
}

func (l *Listing) View() ListingView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return ListingView{
		Products:  l.products,
		Suggested: l.suggested,
		Snapshot:  l.Snapshot(),
	}
}

// Add puts a catalog product into the cart, or bumps its quantity when it is already there.
func (l *Listing) Add(ctx context.Context, productID string) error {
	p, ok := l.index.Lookup(productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return l.add(ctx, p)
}

func (l *Listing) Increase(ctx context.Context, productID string) (int32, error) {
	return l.increase(ctx, productID)
}

func (l *Listing) Decrease(ctx context.Context, productID string) (int32, error) {
	return l.decrease(ctx, productID)
}
