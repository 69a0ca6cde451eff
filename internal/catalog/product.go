package catalog

// Product is an immutable catalog record as served by the product API.
type Product struct {
	ID                 string   `json:"id" validate:"required"`
	Name               string   `json:"name"`
	Attribute          string   `json:"attribute"`
	ThumbnailURL       string   `json:"thumbnailURL,omitempty"`
	SquareThumbnailURL string   `json:"squareThumbnailURL,omitempty"`
	ImageURL           string   `json:"imageURL,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	PriceText          string   `json:"priceText"`
}

// Category is one element of the catalog response; products are grouped under it.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProductCount int32     `json:"productCount"`
	Products     []Product `json:"products"`
}

// BestImageURL prefers the full image, then the square thumbnail, then the thumbnail.
func (p Product) BestImageURL() string {
	return BestURL(p.ImageURL, p.SquareThumbnailURL, p.ThumbnailURL)
}

// BestURL returns the first non-empty candidate.
func BestURL(candidates ...string) string {
	for _, u := range candidates {
		if u != "" {
			return u
		}
	}
	return ""
}

// Flatten concatenates the products of every category, skipping products without an id.
func Flatten(categories []Category) []Product {
	out := []Product{}
	for _, c := range categories {
		for _, p := range c.Products {
			if p.ID == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
