package funding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckoutSession is what the payment gateway hands back for a new session.
type CheckoutSession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"url"`
}

// CheckoutProvider creates hosted checkout sessions with a payment gateway
// and reports whether a finished session was actually paid.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, amount int64, donorEmail string) (*CheckoutSession, error)
	VerifySession(ctx context.Context, sessionID string) (bool, error)
}

// Client wraps interactions with the payment gateway API.
type Client struct {
	baseURL    string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, successURL, cancelURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote gateway is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// CreateSession opens a hosted checkout session for a whole-unit USD amount.
func (c *Client) CreateSession(ctx context.Context, amount int64, donorEmail string) (*CheckoutSession, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":         amount * 100,
		"currency":       "usd",
		"customer_email": donorEmail,
		"success_url":    c.successURL,
		"cancel_url":     c.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/checkout/sessions", c.baseURL), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("create session failed with status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifySession retrieves the session from the gateway and reports whether
// it has been paid. Callers must not trust a session id on its own.
func (c *Client) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseURL, sessionID), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("retrieve session failed with status %d", resp.StatusCode)
	}

	var session struct {
		ID            string `json:"id"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return false, err
	}
	return session.PaymentStatus == "paid", nil
}

var _ CheckoutProvider = (*Client)(nil)
