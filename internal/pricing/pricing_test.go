package pricing

import (
	"testing"

	"github.com/coderarham/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestQuoteFor_HundredDollarCart(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: "p1", Size: "M", Price: 25.00, Quantity: 2},
		{ProductID: "p2", Size: "L", Price: 50.00, Quantity: 1},
	}

	q := QuoteFor(items)
	assert.Equal(t, 100.00, q.Subtotal)
	assert.Equal(t, 9.99, q.Shipping)
	assert.Equal(t, 8.00, q.Tax)
	assert.Equal(t, 117.99, q.GrandTotal)
}

func TestQuoteFor_EmptyCartTotalsZero(t *testing.T) {
	q := QuoteFor(nil)
	assert.Equal(t, 0.0, q.Subtotal)
	assert.Equal(t, 0.0, q.Shipping)
	assert.Equal(t, 0.0, q.Tax)
	assert.Equal(t, 0.0, q.GrandTotal)
}

// Rounding happens once at the end, not per intermediate value: three lines
// of 0.115 would drift if each were rounded before summing.
func TestQuoteFor_NoCompoundedRounding(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: "p1", Size: "S", Price: 0.115, Quantity: 1},
		{ProductID: "p1", Size: "M", Price: 0.115, Quantity: 1},
		{ProductID: "p1", Size: "L", Price: 0.115, Quantity: 1},
	}

	q := QuoteFor(items)
	assert.Equal(t, 0.35, q.Subtotal) // 0.345 rounded once, not 3 x 0.12
}

func TestShipping_AppliesOnlyAboveZero(t *testing.T) {
	assert.Equal(t, 0.0, Shipping(0))
	assert.Equal(t, FlatShipping, Shipping(0.01))
	assert.Equal(t, FlatShipping, Shipping(10_000))
}

func TestGrandTotal_Table(t *testing.T) {
	cases := []struct {
		name     string
		subtotal float64
		want     float64
	}{
		{"empty", 0, 0},
		{"one cent", 0.01, 10.00}, // 0.01 + 9.99 + 0.0008 -> 10.00
		{"hundred", 100.00, 117.99},
		{"large", 2500.00, 2709.99},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Round2(GrandTotal(tc.subtotal)))
		})
	}
}
