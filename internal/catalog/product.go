package catalog

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Sizes       []string  `json:"sizes"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasSize reports whether the product is sold in the given size variant.
// A product with no size list accepts any size key (one-size goods).
func (p *Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
