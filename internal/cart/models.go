package cart

import (
	"sort"
	"time"

	"shopcart/internal/catalog"
)

// DisplayFields is the snapshot of catalog fields copied into a line when it is
// upserted. Lines are never re-synced from the catalog afterwards.
type DisplayFields struct {
	Name               string   `json:"name"`
	Attribute          string   `json:"attribute"`
	ThumbnailURL       string   `json:"thumbnailURL,omitempty"`
	SquareThumbnailURL string   `json:"squareThumbnailURL,omitempty"`
	ImageURL           string   `json:"imageURL,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	PriceText          string   `json:"priceText"`
}

// Line is one row of cart state, keyed by product id.
type Line struct {
	ProductID string `json:"id"`
	DisplayFields
	Quantity int32 `json:"quantity"`
}

// BestImageURL prefers the full image, then the square thumbnail, then the thumbnail.
func (l Line) BestImageURL() string {
	return catalog.BestURL(l.ImageURL, l.SquareThumbnailURL, l.ThumbnailURL)
}

// DisplayFieldsOf copies the fields a cart line keeps from a catalog product.
func DisplayFieldsOf(p catalog.Product) DisplayFields {
	var price *float64
	if p.Price != nil {
		v := *p.Price
		price = &v
	}
	return DisplayFields{
		Name:               p.Name,
		Attribute:          p.Attribute,
		ThumbnailURL:       p.ThumbnailURL,
		SquareThumbnailURL: p.SquareThumbnailURL,
		ImageURL:           p.ImageURL,
		Price:              price,
		PriceText:          p.PriceText,
	}
}

// IDSet is the set of product ids currently in the cart.
type IDSet map[string]struct{}

func (s IDSet) Has(productID string) bool {
	_, ok := s[productID]
	return ok
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type ChangeKind string

const (
	ChangeUpserted ChangeKind = "upserted"
	ChangeAdjusted ChangeKind = "adjusted"
	ChangeRemoved  ChangeKind = "removed"
	ChangeCleared  ChangeKind = "cleared"
)

// Change describes one applied mutation. Quantity is the line quantity after
// the mutation; it is zero for removals and clears.
type Change struct {
	ID        string     `json:"id"`
	Kind      ChangeKind `json:"kind"`
	ProductID string     `json:"product_id,omitempty"`
	Quantity  int32      `json:"quantity"`
	At        time.Time  `json:"at"`
}
