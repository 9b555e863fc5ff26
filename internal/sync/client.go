package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"freshcart/internal/cart"
	"freshcart/internal/catalog"
	"freshcart/internal/logger"

	"go.uber.org/zap"
)

// Client is the outbound surface of the remote order/catalog service.
// Filtering, sorting and pagination are client-side, so the product endpoint
// returns the full catalog.
type Client interface {
	FetchCart(ctx context.Context) ([]cart.Item, error)
	AddItem(ctx context.Context, productID, quantity int) (*cart.Item, error)
	UpdateItem(ctx context.Context, productID, quantity int) (*cart.Item, error)
	RemoveItem(ctx context.Context, productID int) error
	ClearCart(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) error
	RemoveCoupon(ctx context.Context) error
	FetchProducts(ctx context.Context) ([]catalog.RawProduct, error)
}

// ClientConfig tunes the HTTP client. Zero values fall back to the defaults
// below.
type ClientConfig struct {
	BaseURL      string
	Token        string // guest-session bearer token
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 200 * time.Millisecond
)

type httpClient struct {
	baseURL     string
	token       string
	http        *http.Client
	maxAttempts int
	backoff     time.Duration
}

func NewHTTPClient(cfg ClientConfig) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultBackoff
	}

	return &httpClient{
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		http:        &http.Client{Timeout: cfg.Timeout},
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
	}
}

func (c *httpClient) FetchCart(ctx context.Context) ([]cart.Item, error) {
	var out struct {
		Items []cart.Item `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *httpClient) AddItem(ctx context.Context, productID, quantity int) (*cart.Item, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}

	var item cart.Item
	if err := c.do(ctx, http.MethodPost, "/cart/add", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *httpClient) UpdateItem(ctx context.Context, productID, quantity int) (*cart.Item, error) {
	body := map[string]any{"quantity": quantity}

	var item cart.Item
	path := fmt.Sprintf("/cart/items/%d", productID)
	if err := c.do(ctx, http.MethodPut, path, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *httpClient) RemoveItem(ctx context.Context, productID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", productID), nil, nil)
}

func (c *httpClient) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil)
}

func (c *httpClient) ApplyCoupon(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/cart/coupon", map[string]any{"code": code}, nil)
}

func (c *httpClient) RemoveCoupon(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart/coupon", nil, nil)
}

func (c *httpClient) FetchProducts(ctx context.Context) ([]catalog.RawProduct, error) {
	var out []catalog.RawProduct
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do issues one request with bounded retries. Transport failures and 5xx
// responses are retried with exponential backoff; 4xx rejections are final.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			log.Debug("retrying remote call",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrRemoteUnavailable, ctx.Err())
			}
			backoff *= 2
		}

		retryable, err := c.attempt(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		log.Warn("remote call failed", zap.Int("attempt", attempt), zap.Error(err))
	}

	return lastErr
}

func (c *httpClient) attempt(ctx context.Context, method, path string, payload []byte, out any) (retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return false, &RemoteError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: malformed response: %v", ErrRemoteUnavailable, err)
	}
	return false, nil
}

func readMessage(body io.Reader) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
