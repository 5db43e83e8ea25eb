package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "PAID"
)

// Order is the record written once a payment has been verified. Items is a
// snapshot of the cart at payment time; the live cart is cleared afterwards
// by the order-completed consumer.
type Order struct {
	ID             uuid.UUID   `json:"id"`
	GatewayOrderID string      `json:"gateway_order_id"`
	PaymentID      string      `json:"payment_id"`
	UserID         string      `json:"user_id"`
	TotalAmount    float64     `json:"total_amount"`
	Currency       string      `json:"currency"`
	Status         OrderStatus `json:"status"`
	Items          []CartItem  `json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
}
