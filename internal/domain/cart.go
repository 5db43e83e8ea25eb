package domain

import "time"

// CartItem is a single line in a cart. Lines are unique per
// (product_id, size) pair; adding the same pair again bumps the quantity
// instead of appending a second line.
type CartItem struct {
	ProductID string    `bson:"product_id" json:"productId"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Image     string    `bson:"image" json:"image"`
	Size      string    `bson:"size" json:"size"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

func (i CartItem) Matches(productID, size string) bool {
	return i.ProductID == productID && i.Size == size
}

type Cart struct {
	ID          string     `bson:"_id,omitempty" json:"-"`
	UserID      string     `bson:"user_id" json:"userId"`
	Items       []CartItem `bson:"items" json:"items"`
	TotalAmount float64    `bson:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time  `bson:"created_at" json:"-"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"-"`
}

// EmptyCart is the canonical "nothing here" shape: items is a non-nil
// empty slice so it serializes as [] rather than null.
func EmptyCart(userID string) *Cart {
	now := time.Now()
	return &Cart{
		UserID:      userID,
		Items:       []CartItem{},
		TotalAmount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecomputeTotal re-derives TotalAmount from the remaining lines. Must be
// called after every mutation; TotalAmount is never adjusted incrementally.
func (c *Cart) RecomputeTotal() {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.TotalAmount = total
}

// AddItem merges the item into the cart: an existing (product_id, size)
// line gains quantity 1, otherwise the item is appended with quantity 1.
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].Matches(item.ProductID, item.Size) {
			c.Items[i].Quantity++
			c.RecomputeTotal()
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
	c.RecomputeTotal()
}

// SetQuantity sets the matching line's quantity. Returns false when no line
// matches; quantity must already be validated as positive by the caller.
func (c *Cart) SetQuantity(productID, size string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].Matches(productID, size) {
			c.Items[i].Quantity = quantity
			c.RecomputeTotal()
			return true
		}
	}
	return false
}

// RemoveItem deletes the matching line. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(productID, size string) {
	for i, item := range c.Items {
		if item.Matches(productID, size) {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.RecomputeTotal()
}

// Clear empties the cart in place. The cart itself survives a clear; only
// its lines and total are reset.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalAmount = 0
}
