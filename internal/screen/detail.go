package screen

import (
	"context"
	"fmt"

	"shopcart/internal/catalog"
)

// Detail drives the product detail screen.
type Detail struct {
	display
	index *catalog.Index
}

type DetailView struct {
	Product  catalog.Product `json:"product"`
	ImageURL string          `json:"imageURL"`
	Quantity int32           `json:"quantity"`
	InCart   bool            `json:"inCart"`
	Total    float64         `json:"total"`
}

func NewDetail(c Cart, index *catalog.Index) *Detail {
	return &Detail{display: newDisplay("detail", c), index: index}
}

// Open builds the view for productID from the catalog index and the cart.
func (d *Detail) Open(ctx context.Context, productID string) (DetailView, error) {
	p, ok := d.index.Lookup(productID)
	if !ok {
		return DetailView{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	q, inCart, err := d.QuantityOf(ctx, productID)
	if err != nil {
		return DetailView{}, err
	}
	return DetailView{
		Product:  p,
		ImageURL: p.BestImageURL(),
		Quantity: q,
		InCart:   inCart,
		Total:    d.cart.GetTotal(ctx),
	}, nil
}

// QuantityOf reports the quantity of productID and whether it has a line at all.
func (d *Detail) QuantityOf(ctx context.Context, productID string) (int32, bool, error) {
	line, err := d.cart.GetLine(ctx, productID)
	if err != nil {
		return 0, false, d.fail(ctx, "quantity", productID, err)
	}
	if line == nil {
		return 0, false, nil
	}
	return line.Quantity, true, nil
}

func (d *Detail) Add(ctx context.Context, productID string) error {
	p, ok := d.index.Lookup(productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return d.add(ctx, p)
}

func (d *Detail) Increase(ctx context.Context, productID string) (int32, error) {
	return d.increase(ctx, productID)
}

func (d *Detail) Decrease(ctx context.Context, productID string) (int32, error) {
	return d.decrease(ctx, productID)
}
