package virl2

import (
	"context"
	"time"
)

// LabsClient provides access to lab resources on the controller.
type LabsClient interface {
	List(ctx context.Context) ([]string, error)
	Create(ctx context.Context, title string) (*Lab, error)
	Get(ctx context.Context, id string) (*Lab, error)
	Delete(ctx context.Context, id string) error
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Sync(ctx context.Context, lab *Lab) error
}

// Client is the top-level interface for the VIRL2 controller API.
type Client interface {
	Labs() LabsClient

	// ImportLab uploads topology text in the given format and returns a
	// synchronized handle for the created lab.
	ImportLab(ctx context.Context, topology, title string, format TopologyFormat) (*Lab, error)

	// ImportLabFromPath reads a topology file and imports it; the format is
	// classified by file extension (.ng is JSON, .virl is legacy XML) and the
	// title is the file name.
	ImportLabFromPath(ctx context.Context, path string) (*Lab, error)

	// WaitForLLDConnected polls the controller's link-layer discovery
	// readiness endpoint once.
	WaitForLLDConnected(ctx context.Context) error

	// Authenticate forces a fresh login and verifies it with a labs probe.
	Authenticate(ctx context.Context) error

	// BaseURL returns the normalized API base, always ending in "/api/v0/".
	BaseURL() string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a virl2.Client.
//
// # Resolution precedence
//
// virl2client.New resolves every connection field in the same order:
// explicit value here, then environment variable, then built-in default.
// URL falls back to VIRL2_URL and finally to "virl2"; Username and Password
// fall back to VIRL2_USER and VIRL2_PASS and have no default, so they must
// resolve to non-empty strings. CACertFile falls back to CA_BUNDLE; when
// neither is set the system trust store is used.
//
// # URL normalization
//
// The resolved URL may be a bare hostname. A missing scheme defaults to
// https, an http scheme is rewritten to https unless AllowHTTP is set, any
// path prefix is preserved, and the API version segment "api/v0/" is
// appended. Schemes other than http/https fail construction.
type Config struct {
	// URL: controller address, e.g. "https://virl2.example.com" or a bare
	// hostname. Resolved against VIRL2_URL when empty.
	URL string
	// Username: account name for the authenticate endpoint. Resolved against
	// VIRL2_USER when empty; an empty resolved value fails construction.
	Username string
	// Password: account password. Resolved against VIRL2_PASS when empty; an
	// empty resolved value fails construction.
	Password string

	// SkipVerify disables TLS certificate verification. Intended for lab
	// setups with self-signed controller certificates.
	SkipVerify bool
	// CACertFile: path to a PEM bundle used to verify the controller
	// certificate. Resolved against CA_BUNDLE when empty.
	CACertFile string
	// AllowHTTP permits plain-text connections; without it an http URL is
	// silently upgraded to https.
	AllowHTTP bool
	// RaiseForAuthFailure: when set, a failed initial authentication (or
	// failed labs probe) makes construction fail with *InitializationError.
	// When unset the failure is deferred and the first request goes through
	// the normal reauthenticate-once policy.
	RaiseForAuthFailure bool

	// Optional configurations
	// HTTPTimeout: timeout applied to each HTTP request. Zero means the
	// library default.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport-level retries for transient
	// failures (connection errors, 429, 5xx). Never applies to 401.
	RetryMax int
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration
	// Debug enables verbose request/response logging when a Logger is set.
	Debug bool
	// Logger: optional structured logger used by the transport.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
