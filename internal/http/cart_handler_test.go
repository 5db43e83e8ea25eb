package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coderarham/storefront/internal/catalog"
	"github.com/coderarham/storefront/internal/domain"
	"github.com/coderarham/storefront/internal/repository"
	"github.com/go-chi/chi/v5"
)

type ServiceMock struct {
	cart *domain.Cart
	err  error

	lastItem     domain.CartItem
	lastQuantity int
}

func (m *ServiceMock) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *ServiceMock) AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastItem = item
	return m.cart, nil
}

func (m *ServiceMock) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastQuantity = quantity
	return m.cart, nil
}

func (m *ServiceMock) RemoveItem(ctx context.Context, userID, productID, size string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *ServiceMock) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

type CatalogMock struct {
	product *catalog.Product
	err     error
}

func (m CatalogMock) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func testCart() *domain.Cart {
	cart := domain.EmptyCart("user-1")
	cart.Items = []domain.CartItem{
		{ProductID: "tee-oversized", Name: "Oversized Tee", Price: 24.50, Size: "M", Quantity: 2},
	}
	cart.RecomputeTotal()
	return cart
}

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID:    "tee-oversized",
		Name:  "Oversized Tee",
		Price: 24.50,
		Sizes: []string{"S", "M", "L"},
	}
}

func withUserID(r *http.Request, userID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", userID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetCart_Success(t *testing.T) {
	mock := &ServiceMock{cart: testCart()}
	handler := NewCartHandler(mock, CatalogMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withUserID(httptest.NewRequest("GET", "/api/v1/cart/user-1", nil), "user-1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var cart domain.Cart
	if err := json.NewDecoder(recorder.Body).Decode(&cart); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if cart.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", cart.UserID)
	}
	if len(cart.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(cart.Items))
	}
}

func TestGetCart_MissingUserID(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{}, CatalogMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withUserID(httptest.NewRequest("GET", "/api/v1/cart/", nil), "")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestGetQuote_ComputesTotals(t *testing.T) {
	cart := domain.EmptyCart("user-1")
	cart.Items = []domain.CartItem{
		{ProductID: "p1", Price: 50.00, Quantity: 2},
	}
	cart.RecomputeTotal()

	handler := NewCartHandler(&ServiceMock{cart: cart}, CatalogMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withUserID(httptest.NewRequest("GET", "/api/v1/cart/user-1/quote", nil), "user-1")

	handler.GetQuote(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var quote struct {
		Subtotal   float64 `json:"subtotal"`
		Shipping   float64 `json:"shipping"`
		Tax        float64 `json:"tax"`
		GrandTotal float64 `json:"grandTotal"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&quote); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if quote.Subtotal != 100.00 {
		t.Errorf("expected subtotal 100.00, got %v", quote.Subtotal)
	}
	if quote.GrandTotal != 117.99 {
		t.Errorf("expected grand total 117.99, got %v", quote.GrandTotal)
	}
}

func TestAddItem_ResolvesPriceFromCatalog(t *testing.T) {
	mock := &ServiceMock{cart: testCart()}
	handler := NewCartHandler(mock, CatalogMock{product: testProduct()}, 5*time.Second)

	body := `{"userId":"user-1","item":{"productId":"tee-oversized","size":"M","price":0.01}}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/add", bytes.NewBufferString(body))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}
	// price must come from the catalog, not the client payload
	if mock.lastItem.Price != 24.50 {
		t.Errorf("expected catalog price 24.50, got %v", mock.lastItem.Price)
	}
	if mock.lastItem.Name != "Oversized Tee" {
		t.Errorf("expected catalog name, got %q", mock.lastItem.Name)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{}, CatalogMock{err: catalog.ErrProductNotFound}, 5*time.Second)

	body := `{"userId":"user-1","item":{"productId":"nope","size":"M"}}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/add", bytes.NewBufferString(body))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestAddItem_InvalidSize(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{}, CatalogMock{product: testProduct()}, 5*time.Second)

	body := `{"userId":"user-1","item":{"productId":"tee-oversized","size":"XXXL"}}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/add", bytes.NewBufferString(body))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{}, CatalogMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/add", bytes.NewBufferString("{not json"))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestUpdateQuantity_Success(t *testing.T) {
	mock := &ServiceMock{cart: testCart()}
	handler := NewCartHandler(mock, CatalogMock{}, 5*time.Second)

	body := `{"userId":"user-1","productId":"tee-oversized","size":"M","quantity":3}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/api/v1/cart/update", bytes.NewBufferString(body))

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.lastQuantity != 3 {
		t.Errorf("expected quantity 3 passed through, got %d", mock.lastQuantity)
	}
}

func TestUpdateQuantity_RejectsOutOfRange(t *testing.T) {
	for _, quantity := range []int{0, -1, 100} {
		mock := &ServiceMock{cart: testCart()}
		handler := NewCartHandler(mock, CatalogMock{}, 5*time.Second)

		body, _ := json.Marshal(UpdateQuantityRequestDTO{
			UserID: "user-1", ProductID: "tee-oversized", Size: "M", Quantity: quantity,
		})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("PUT", "/api/v1/cart/update", bytes.NewBuffer(body))

		handler.UpdateQuantity(recorder, request)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("quantity %d: expected %d, got %d", quantity, http.StatusBadRequest, recorder.Code)
		}
		if mock.lastQuantity != 0 {
			t.Errorf("quantity %d: service should not have been called", quantity)
		}
	}
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{err: repository.ErrItemNotFound}, CatalogMock{}, 5*time.Second)

	body := `{"userId":"user-1","productId":"ghost","size":"M","quantity":2}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/api/v1/cart/update", bytes.NewBufferString(body))

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestRemoveItem_Success(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{cart: domain.EmptyCart("user-1")}, CatalogMock{}, 5*time.Second)

	body := `{"userId":"user-1","productId":"tee-oversized","size":"M"}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/api/v1/cart/remove", bytes.NewBufferString(body))

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestClearCart_Success(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{cart: domain.EmptyCart("user-1")}, CatalogMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withUserID(httptest.NewRequest("DELETE", "/api/v1/cart/clear/user-1", nil), "user-1")

	handler.ClearCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var cart domain.Cart
	if err := json.NewDecoder(recorder.Body).Decode(&cart); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("expected empty items, got %d", len(cart.Items))
	}
	if cart.TotalAmount != 0 {
		t.Errorf("expected zero total, got %v", cart.TotalAmount)
	}
}

func TestGetCart_ServiceFailure(t *testing.T) {
	handler := NewCartHandler(&ServiceMock{err: errors.New("mongo down")}, CatalogMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withUserID(httptest.NewRequest("GET", "/api/v1/cart/user-1", nil), "user-1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected %d, got %d", http.StatusInternalServerError, recorder.Code)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != "internal_error" {
		t.Errorf("expected internal_error code, got %q", errResp.Code)
	}
}
