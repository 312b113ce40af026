// Package apiclient is the typed HTTPS client over the versioned
// /api/<version>/... REST surface (§4.6). Grounded on kcli's
// internal/ai/client.go: a plain net/http.Client with explicit Do/decode
// helpers rather than an HTTP wrapper library — no repo in the pack reaches
// for an HTTP client wrapper (resty, sling, ...) anywhere, so this
// component stays on net/http to match the corpus rather than diverge from
// it (see DESIGN.md).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phylum-dev/cli-go/pkg/version"
)

// TokenSource supplies the bearer token for each request, decoupling the
// client from internal/auth's refresh/precedence logic.
type TokenSource func(ctx context.Context) (string, error)

// Client is a typed request layer over the API base URL.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	Token       TokenSource
	Timeout     time.Duration // applied per request, per §4.6
}

// New builds a Client. ignoreCerts disables server-certificate validation
// for this invocation only and never mutates persisted config (§4.5).
func New(baseURL string, token TokenSource, timeout time.Duration, ignoreCerts bool) *Client {
	transport := http.DefaultTransport
	if ignoreCerts {
		transport = insecureTransport()
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Transport: transport},
		Token:      token,
		Timeout:    timeout,
	}
}

// ApiError is the typed non-2xx error, carrying the server's structured
// error payload when present (§4.6, §7).
type ApiError struct {
	Status  int
	Payload json.RawMessage
}

func (e *ApiError) Error() string {
	if len(e.Payload) > 0 {
		return fmt.Sprintf("apiclient: HTTP %d: %s", e.Status, string(e.Payload))
	}
	return fmt.Sprintf("apiclient: HTTP %d", e.Status)
}

// Do builds and executes a JSON request against endpoint (e.g.
// "v1/jobs"), decoding a 2xx JSON response body into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.effectiveTimeout())
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.BaseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("apiclient: building request: %w", err)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", version.UserAgent())

	if c.Token != nil {
		tok, err := c.Token(ctx)
		if err != nil {
			return err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ApiError{Status: resp.StatusCode, Payload: respBody}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("apiclient: decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) effectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 60 * time.Second
}

// RawRequest builds an *http.Request for callers (extruntime's `fetch` host
// API) that want the raw *http.Response rather than a decoded struct.
func (c *Client) RawRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if c.Token != nil {
		tok, err := c.Token(ctx)
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}
