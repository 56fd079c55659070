package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	nethttp "net/http"
	"os"
	"strconv"

	"github.com/fivetwenty-io/virl2-client/internal/auth"
	"github.com/fivetwenty-io/virl2-client/internal/constants"
	"github.com/fivetwenty-io/virl2-client/internal/http"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// Client implements the virl2.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       virl2.Logger

	// Construction parameters kept for diagnostics.
	inputURL string
	config   *virl2.Config

	// Resource clients
	labs *LabsClient
}

// New creates the concrete client from a resolved configuration. cfg carries
// the resolved (argument/environment) values and base is the normalized API
// root ending in "api/v0/". The initial authentication and labs probe run
// here; their failure either fails construction (RaiseForAuthFailure) or is
// deferred to the first request.
func New(ctx context.Context, cfg *virl2.Config, inputURL, base string) (*Client, error) {
	stdClient, err := buildStandardClient(cfg)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		AuthURL:    base + "authenticate",
		Username:   cfg.Username,
		Password:   cfg.Password,
		HTTPClient: stdClient,
	})

	httpOpts := createHTTPClientOptions(cfg)
	httpOpts = append(httpOpts, http.WithHTTPClient(stdClient))

	client := &Client{
		httpClient:   http.NewClient(base, tokenManager, httpOpts...),
		tokenManager: tokenManager,
		baseURL:      base,
		logger:       cfg.Logger,
		inputURL:     inputURL,
		config:       cfg,
	}

	client.labs = NewLabsClient(client.httpClient)

	err = client.Authenticate(ctx)
	if err != nil {
		if cfg.RaiseForAuthFailure {
			return nil, &virl2.InitializationError{Message: "authentication failed", Err: err}
		}

		// Deferred: the first dispatched request goes through the normal
		// reauthenticate-once policy.
		if client.logger != nil {
			client.logger.Warn("initial authentication failed, deferring", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return client, nil
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(cfg *virl2.Config) []http.Option {
	var httpOpts []http.Option

	if cfg.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(cfg.Logger))
	}

	if cfg.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if cfg.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(cfg.UserAgent))
	}

	if cfg.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if cfg.RetryWaitMin > 0 {
			retryWaitMin = cfg.RetryWaitMin
		}

		if cfg.RetryWaitMax > 0 {
			retryWaitMax = cfg.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(cfg.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// buildStandardClient builds the underlying net/http client with the
// resolved TLS verification setting. The same client backs both the token
// manager and the retrying transport.
func buildStandardClient(cfg *virl2.Config) (*nethttp.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.SkipVerify {
		tlsConfig.InsecureSkipVerify = true // #nosec G402 -- explicit opt-in for lab controllers with self-signed certificates
	}

	if cfg.CACertFile != "" {
		pem, err := os.ReadFile(cfg.CACertFile)
		if err != nil {
			return nil, &virl2.InitializationError{Message: "reading CA bundle", Err: err}
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, virl2.NewInitializationError("no certificates found in CA bundle %s", cfg.CACertFile)
		}

		tlsConfig.RootCAs = pool
	}

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &nethttp.Client{
		Timeout:   timeout,
		Transport: &nethttp.Transport{TLSClientConfig: tlsConfig},
	}, nil
}

// Labs implements virl2.Client.Labs.
func (c *Client) Labs() virl2.LabsClient {
	return c.labs
}

// BaseURL implements virl2.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate forces a fresh login and verifies the session with a labs
// probe, matching the controller's expected construction sequence.
func (c *Client) Authenticate(ctx context.Context) error {
	err := c.tokenManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	_, err = c.httpClient.Get(ctx, "labs", nil)
	if err != nil {
		return fmt.Errorf("verifying authentication: %w", err)
	}

	return nil
}

// WaitForLLDConnected implements virl2.Client.WaitForLLDConnected. It polls
// the readiness endpoint once; the response carries no payload of interest.
func (c *Client) WaitForLLDConnected(ctx context.Context) error {
	_, err := c.httpClient.Get(ctx, "wait_for_lld_connected", nil)
	if err != nil {
		return fmt.Errorf("waiting for LLD: %w", err)
	}

	return nil
}

// String renders the six construction parameters for diagnostics.
func (c *Client) String() string {
	return fmt.Sprintf("ClientLibrary(%q, %q, %q, %s, %t, %t)",
		c.inputURL, c.config.Username, c.config.Password,
		c.sslVerifyString(), c.config.AllowHTTP, c.config.RaiseForAuthFailure)
}

func (c *Client) sslVerifyString() string {
	if c.config.CACertFile != "" {
		return strconv.Quote(c.config.CACertFile)
	}

	return strconv.FormatBool(!c.config.SkipVerify)
}
