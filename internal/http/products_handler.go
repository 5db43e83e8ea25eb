package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CatalogReader interface {
	GetAllProducts(ctx context.Context) ([]*catalog.Product, error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type ProductsHandler struct {
	catalog CatalogReader
	timeout time.Duration
}

func NewProductsHandler(catalog CatalogReader, timeout time.Duration) *ProductsHandler {
	return &ProductsHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []*catalog.Product `json:"products"`
}

// GET /api/v1/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.GetAllProducts(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load products")
		return
	}
	if products == nil {
		products = []*catalog.Product{}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// GET /api/v1/products/{productID}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "productID")

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}
