package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Option configures an HTTP-backed client.
type Option func(*httpClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) {
		h.client = c
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(h *httpClient) {
		h.client.Timeout = d
	}
}

type httpClient struct {
	client    *http.Client
	userAgent string
}

func newHTTPClient(opts []Option) httpClient {
	h := httpClient{
		client:    &http.Client{Timeout: 8 * time.Second},
		userAgent: "stock-tracker/1.0",
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// get performs a GET and returns the status code and body.
// Transport failures are reported as ErrNetwork.
func (h httpClient) get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, networkError(err)
	}

	return resp.StatusCode, data, nil
}
