package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/domain"
	"github.com/coderarham/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderReader is the read-side slice of the orders store the API exposes.
type OrderReader interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(store OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  store,
		timeout: timeout,
	}
}

type OrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

// GET /api/v1/orders/{userID}
func (h *OrdersHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userID is required")
		return
	}

	list, err := h.orders.ListOrders(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load orders")
		return
	}
	if list == nil {
		list = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, OrdersResponse{Orders: list})
}

// GET /api/v1/orders/id/{orderID}
func (h *OrdersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "orderID must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
