package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coderarham/storefront/internal/gateway"
)

// HTTPScriptLoader fetches the gateway's checkout script, mirroring what a
// browser does before the widget can open.
type HTTPScriptLoader struct {
	url  string
	http *http.Client
}

func NewHTTPScriptLoader(url string) *HTTPScriptLoader {
	return &HTTPScriptLoader{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *HTTPScriptLoader) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return fmt.Errorf("script fetch failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("script fetch returned status %d", resp.StatusCode)
	}
	return nil
}

// Backend talks to the storefront's payment endpoints; it implements both
// OrderCreator and Verifier. One Backend per checkout session: the verify
// endpoint needs the user the order is recorded against.
type Backend struct {
	baseURL string
	userID  string
	http    *http.Client
}

func NewBackend(baseURL, userID string) *Backend {
	return &Backend{
		baseURL: baseURL,
		userID:  userID,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *Backend) CreateOrder(ctx context.Context, userID, currency, receipt string) (*gateway.Order, error) {
	body, err := json.Marshal(map[string]string{
		"userId":   userID,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/v1/payment/create-order", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order creation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("order creation returned status %d", resp.StatusCode)
	}

	var payload struct {
		Order *gateway.Order `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed order payload: %w", err)
	}
	if payload.Order == nil {
		return nil, fmt.Errorf("order missing from response")
	}
	return payload.Order, nil
}

func (b *Backend) Verify(ctx context.Context, orderID, paymentID, signature string) (bool, string, error) {
	body, err := json.Marshal(map[string]string{
		"userId":              b.userID,
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
	})
	if err != nil {
		return false, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/v1/payment/verify", bytes.NewReader(body))
	if err != nil {
		return false, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("verification returned status %d", resp.StatusCode)
	}

	var payload struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, "", fmt.Errorf("malformed verification payload: %w", err)
	}
	return payload.Success, payload.Reason, nil
}
