package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/domain"
	"github.com/coderarham/storefront/internal/gateway"
	"github.com/coderarham/storefront/internal/pricing"
	"github.com/google/uuid"
)

// PaymentGateway is the provider-side pair of operations the API needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// OrderRecorder persists verified payments.
type OrderRecorder interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type PaymentHandler struct {
	gateway PaymentGateway
	cart    CartService
	orders  OrderRecorder
	timeout time.Duration
}

func NewPaymentHandler(gw PaymentGateway, cart CartService, orders OrderRecorder, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		gateway: gw,
		cart:    cart,
		orders:  orders,
		timeout: timeout,
	}
}

type CreateOrderRequestDTO struct {
	UserID   string `json:"userId"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type CreateOrderResponseDTO struct {
	Order *gateway.Order `json:"order"`
}

type VerifyRequestDTO struct {
	UserID    string `json:"userId"`
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyResponseDTO struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// POST /api/v1/payment/create-order
//
// The order amount is computed here from the user's persisted cart, never
// taken from the request body, so a tampered client cannot pay less than
// the cart totals to.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userId is required")
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	if req.Receipt == "" {
		req.Receipt = "rcpt-" + uuid.NewString()
	}

	cart, err := h.cart.GetCart(ctx, req.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(cart.Items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
		return
	}

	amount := pricing.Round2(pricing.GrandTotal(pricing.Subtotal(cart.Items)))
	order, err := h.gateway.CreateOrder(ctx, amount, req.Currency, req.Receipt)
	if err != nil {
		log.Printf("gateway order creation failed for user %s: %v", req.UserID, err)
		respondError(w, http.StatusBadGateway, "gateway_error", "failed to create payment order")
		return
	}

	respondJSON(w, http.StatusCreated, CreateOrderResponseDTO{Order: order})
}

// POST /api/v1/payment/verify
//
// Responds 200 with an explicit success flag either way; a failed
// verification is a business outcome, not a transport error. The cart is
// cleared asynchronously by the order-completed consumer, not here.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VerifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "userId, razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
		return
	}

	if !h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		log.Printf("payment verification failed for order %s: signature mismatch", req.OrderID)
		respondJSON(w, http.StatusOK, VerifyResponseDTO{Success: false, Reason: "signature mismatch"})
		return
	}

	cart, err := h.cart.GetCart(ctx, req.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	order := &domain.Order{
		ID:             uuid.New(),
		GatewayOrderID: req.OrderID,
		PaymentID:      req.PaymentID,
		UserID:         req.UserID,
		TotalAmount:    pricing.Round2(pricing.GrandTotal(pricing.Subtotal(cart.Items))),
		Currency:       "INR",
		Status:         domain.OrderStatusPaid,
		Items:          cart.Items,
	}

	if err := h.orders.CreateOrder(ctx, order); err != nil {
		log.Printf("failed to record verified order %s: %v", req.OrderID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to record order")
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponseDTO{Success: true})
}
