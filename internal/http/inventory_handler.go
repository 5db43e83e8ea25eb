package http

import (
	"context"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/sheets"
)

// StockFetcher never fails; on any upstream problem it serves a fallback.
type StockFetcher interface {
	FetchStock(ctx context.Context) []sheets.StockRecord
}

type InventoryHandler struct {
	stock   StockFetcher
	timeout time.Duration
}

func NewInventoryHandler(stock StockFetcher, timeout time.Duration) *InventoryHandler {
	return &InventoryHandler{
		stock:   stock,
		timeout: timeout,
	}
}

type InventoryResponse struct {
	Records []sheets.StockRecord `json:"records"`
}

// GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, InventoryResponse{Records: h.stock.FetchStock(ctx)})
}
