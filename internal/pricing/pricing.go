// Package pricing derives order totals from cart lines. All math runs at
// full float64 precision; values are rounded to cents only when a Quote is
// built for display or for the payment gateway.
package pricing

import (
	"math"

	"github.com/coderarham/storefront/internal/domain"
)

const (
	// FlatShipping applies to any non-empty cart regardless of item count.
	FlatShipping = 9.99

	// TaxRate is a flat 8%, no jurisdiction logic.
	TaxRate = 0.08
)

func Subtotal(items []domain.CartItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}

// Shipping is zero for an empty cart; an order with nothing in it must
// total zero.
func Shipping(subtotal float64) float64 {
	if subtotal > 0 {
		return FlatShipping
	}
	return 0
}

func Tax(subtotal float64) float64 {
	return subtotal * TaxRate
}

func GrandTotal(subtotal float64) float64 {
	return subtotal + Shipping(subtotal) + Tax(subtotal)
}

// Round2 rounds to 2 decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Quote is the display-ready breakdown: every field rounded to cents.
type Quote struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grandTotal"`
}

func QuoteFor(items []domain.CartItem) Quote {
	subtotal := Subtotal(items)
	return Quote{
		Subtotal:   Round2(subtotal),
		Shipping:   Round2(Shipping(subtotal)),
		Tax:        Round2(Tax(subtotal)),
		GrandTotal: Round2(GrandTotal(subtotal)),
	}
}
