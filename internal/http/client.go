// Package http provides the transport context for the VIRL2 API: absolute
// URL construction from the api/v0 base, bearer token attachment, and the
// dispatcher policy of exactly one re-authentication per logical call when a
// request comes back 401. Transient failures (connection errors, 429, 5xx)
// are retried below this layer by retryablehttp and never trigger
// re-authentication.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/virl2-client/internal/auth"
	"github.com/fivetwenty-io/virl2-client/internal/constants"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// Client is the HTTP transport for the VIRL2 API.
type Client struct {
	baseURL    string
	tokens     auth.TokenManager
	httpClient *retryablehttp.Client
	logger     virl2.Logger
	debug      bool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for request/response logging.
func WithLogger(logger virl2.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables verbose request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes the transport-level retry behavior for transient
// failures. It has no effect on the 401 policy.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPClient sets the underlying standard client, carrying TLS settings
// and timeouts into the retrying transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

// NewClient creates a transport rooted at baseURL. A nil token manager sends
// requests without an Authorization header.
func NewClient(baseURL string, tokens auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: retryClient,
		userAgent:  "virl2-client-go",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an API response with the body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do issues the request, attaching the bearer token when available. On a 401
// it invalidates the token, re-authenticates once, and reissues the request
// exactly once; a second 401 is returned to the caller as *APIError. Any
// other non-2xx status returns *APIError immediately.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	target := c.buildURL(req.Path, req.Query)

	resp, err := c.send(ctx, req, target, body, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		c.logDebug("token rejected, re-authenticating", map[string]interface{}{
			"method": req.Method,
			"url":    target,
		})

		c.tokens.Invalidate()

		err = c.tokens.RefreshToken(ctx)
		if err != nil {
			return resp, fmt.Errorf("re-authenticating after 401: %w", err)
		}

		resp, err = c.send(ctx, req, target, body, contentType)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &virl2.APIError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Method:     req.Method,
			URL:        target,
			Body:       resp.Body,
		}
	}

	return resp, nil
}

// send issues one attempt and reads the full response body.
func (c *Client) send(ctx context.Context, req *Request, target string, body []byte, contentType string) (*Response, error) {
	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.logDebug("API request", map[string]interface{}{
		"method": req.Method,
		"url":    target,
	})

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logDebug("API response", map[string]interface{}{
		"method":      req.Method,
		"url":         target,
		"status_code": httpResp.StatusCode,
	})

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostWithQuery issues a POST request with query parameters, used by the
// import endpoints that carry the title in the query string.
func (c *Client) PostWithQuery(ctx context.Context, path string, query url.Values, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Query: query, Body: body})
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// BaseURL returns the transport's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildURL joins the base URL with a relative path and query values.
func (c *Client) buildURL(path string, query url.Values) string {
	target := strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return target
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil && c.debug {
		c.logger.Debug(msg, fields)
	}
}

// encodeBody renders a request body. Byte slices and strings are sent
// unmodified, which the import endpoints rely on; anything else non-nil is
// JSON-encoded.
func encodeBody(body interface{}) ([]byte, string, error) {
	switch value := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return value, "", nil
	case string:
		return []byte(value), "", nil
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return encoded, "application/json", nil
	}
}
