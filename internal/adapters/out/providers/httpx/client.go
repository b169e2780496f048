// Package httpx is the JSON over HTTP client shared by provider adapters.
// It classifies every failure into the orchestration error taxonomy:
//
//   - errs.TransientNetworkError: dial, timeout, 429 and 5xx responses
//   - errs.ProviderProtocolError: other non-2xx responses and undecodable bodies
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catering/internal/pkg/errs"
)

// DefaultTimeout bounds a single provider call when none is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response ends up in the error text.
const maxErrorBody = 512

// Client calls one provider below its base URL.
type Client struct {
	provider string
	baseURL  *url.URL
	http     *http.Client
}

// NewClient creates a client for provider rooted at baseURL.
func NewClient(provider, baseURL string, timeout time.Duration) (*Client, error) {
	if provider == "" {
		return nil, errs.NewValueIsRequiredError("provider")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("base url "+baseURL, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		baseURL:  u,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string {
	return c.provider
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Post sends in as JSON to the base URL joined with path and decodes the reply into out.
func (c *Client) Post(ctx context.Context, op, path string, in, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, in, out)
}

// Get decodes the reply of a GET to the base URL joined with path into out.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errs.NewProviderProtocolError(c.provider, op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return errs.NewProviderProtocolError(c.provider, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		return errs.NewTransientNetworkError(c.provider, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		cause := fmt.Errorf("%s %s: %d %s", method, target.Path, resp.StatusCode, bytes.TrimSpace(snippet))
		if IsTransientStatus(resp.StatusCode) {
			return errs.NewTransientNetworkError(c.provider, op, cause)
		}
		return errs.NewProviderProtocolError(c.provider, op, cause)
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewProviderProtocolError(c.provider, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}
