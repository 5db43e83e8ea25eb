// Package client is an HTTP client for the cart API, for use by other
// processes (the checkout frontend server, batch jobs). Every operation
// degrades to the canonical empty cart on failure: callers render an empty
// cart instead of an error page when the store is down.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

type CartClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Cart]
}

func NewCartClient(baseURL string) *CartClient {
	settings := gobreaker.Settings{
		Name:        "cart-store",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &CartClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*domain.Cart](settings),
	}
}

// GetCart fetches the user's cart. Any failure yields the empty cart.
func (c *CartClient) GetCart(ctx context.Context, userID string) *domain.Cart {
	return c.fallback(userID, func() (*domain.Cart, error) {
		return c.doJSON(ctx, http.MethodGet, "/api/v1/cart/"+userID, nil)
	})
}

// AddItem adds one unit of (productID, size) to the user's cart and returns
// the updated cart, or the empty cart on failure.
func (c *CartClient) AddItem(ctx context.Context, userID, productID, size string) *domain.Cart {
	body := map[string]any{
		"userId": userID,
		"item":   map[string]string{"productId": productID, "size": size},
	}
	return c.fallback(userID, func() (*domain.Cart, error) {
		return c.doJSON(ctx, http.MethodPost, "/api/v1/cart/add", body)
	})
}

// UpdateQuantity sets the quantity of an existing cart line.
func (c *CartClient) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) *domain.Cart {
	body := map[string]any{
		"userId":    userID,
		"productId": productID,
		"size":      size,
		"quantity":  quantity,
	}
	return c.fallback(userID, func() (*domain.Cart, error) {
		return c.doJSON(ctx, http.MethodPut, "/api/v1/cart/update", body)
	})
}

// RemoveItem removes a cart line.
func (c *CartClient) RemoveItem(ctx context.Context, userID, productID, size string) *domain.Cart {
	body := map[string]any{
		"userId":    userID,
		"productId": productID,
		"size":      size,
	}
	return c.fallback(userID, func() (*domain.Cart, error) {
		return c.doJSON(ctx, http.MethodDelete, "/api/v1/cart/remove", body)
	})
}

// ClearCart empties the user's cart.
func (c *CartClient) ClearCart(ctx context.Context, userID string) *domain.Cart {
	return c.fallback(userID, func() (*domain.Cart, error) {
		return c.doJSON(ctx, http.MethodDelete, "/api/v1/cart/clear/"+userID, nil)
	})
}

// fallback runs the call through the breaker and converts every failure,
// including an open breaker, into the canonical empty cart.
func (c *CartClient) fallback(userID string, call func() (*domain.Cart, error)) *domain.Cart {
	cart, err := c.breaker.Execute(call)
	if err != nil {
		log.Printf("cart store call failed for user %s, serving empty cart: %v", userID, err)
		return domain.EmptyCart(userID)
	}
	return cart
}

func (c *CartClient) doJSON(ctx context.Context, method, path string, body any) (*domain.Cart, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cart store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cart store returned status %d", resp.StatusCode)
	}

	var cart domain.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("malformed cart payload: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}
