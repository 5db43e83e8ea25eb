package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/catalog"
	"github.com/coderarham/storefront/internal/domain"
	"github.com/coderarham/storefront/internal/pricing"
	"github.com/go-chi/chi/v5"
)

// CartService is what the handler needs from the cart layer.
// Consumers define this interface, not the service implementation.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID, size string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
}

// ProductCatalog resolves the authoritative name/price/image for a cart
// line. Clients only name a (productId, size) pair; prices never come from
// the request body.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type CartHandler struct {
	service CartService
	catalog ProductCatalog
	timeout time.Duration
}

func NewCartHandler(service CartService, catalog ProductCatalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service: service,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	UserID string `json:"userId"`
	Item   struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
	} `json:"item"`
}

type UpdateQuantityRequestDTO struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequestDTO struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
}

// GET /api/v1/cart/{userID}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userID is required")
		return
	}

	cart, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// GET /api/v1/cart/{userID}/quote
func (h *CartHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userID is required")
		return
	}

	cart, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pricing.QuoteFor(cart.Items))
}

// POST /api/v1/cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userId is required")
		return
	}
	if req.Item.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "item.productId is required")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.Item.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to validate product")
		return
	}
	if !product.HasSize(req.Item.Size) {
		respondError(w, http.StatusBadRequest, "invalid_size", "size not available for this product")
		return
	}

	cart, err := h.service.AddItem(ctx, req.UserID, domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.ImageURL,
		Size:      req.Item.Size,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

// PUT /api/v1/cart/update
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userId is required")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.service.UpdateQuantity(ctx, req.UserID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// DELETE /api/v1/cart/remove
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RemoveItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userId is required")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	cart, err := h.service.RemoveItem(ctx, req.UserID, req.ProductID, req.Size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// DELETE /api/v1/cart/clear/{userID}
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "userID is required")
		return
	}

	cart, err := h.service.ClearCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}
