package virl2client

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fivetwenty-io/virl2-client/internal/client"
	"github.com/fivetwenty-io/virl2-client/internal/constants"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// New creates a new VIRL2 API client.
//
// Connection fields are resolved with the precedence explicit argument >
// environment variable > default, the URL is normalized to the api/v0 base,
// and an initial authenticate plus labs probe is performed. A probe failure
// fails construction when Config.RaiseForAuthFailure is set and is deferred
// to the first request otherwise. Resolution or URL validation failures are
// reported as *virl2.InitializationError before any network call.
func New(ctx context.Context, config *virl2.Config) (virl2.Client, error) {
	if config == nil {
		return nil, &virl2.InitializationError{Message: "no config", Err: virl2.ErrConfigRequired}
	}

	resolved, err := resolve(config)
	if err != nil {
		return nil, err
	}

	base, err := normalizeURL(resolved.URL, resolved.AllowHTTP)
	if err != nil {
		return nil, err
	}

	virl2Client, err := client.New(ctx, resolved, resolved.URL, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return virl2Client, nil
}

// NewWithPassword creates a new client from a URL and credentials, leaving
// every other setting at its default.
func NewWithPassword(ctx context.Context, controllerURL, username, password string) (virl2.Client, error) {
	return New(ctx, &virl2.Config{
		URL:      controllerURL,
		Username: username,
		Password: password,
	})
}

// NewFromEnv creates a new client resolved entirely from the environment.
func NewFromEnv(ctx context.Context) (virl2.Client, error) {
	return New(ctx, &virl2.Config{})
}

// resolve applies the argument > environment > default precedence and
// returns an immutable resolved copy. This is the only place the library
// reads the environment.
func resolve(config *virl2.Config) (*virl2.Config, error) {
	resolved := *config

	if resolved.URL == "" {
		resolved.URL = os.Getenv(constants.EnvURL)
	}

	if resolved.URL == "" {
		resolved.URL = constants.DefaultControllerHost
	}

	if resolved.Username == "" {
		resolved.Username = os.Getenv(constants.EnvUsername)
	}

	if resolved.Username == "" {
		return nil, &virl2.InitializationError{Message: "no username given", Err: virl2.ErrUsernameRequired}
	}

	if resolved.Password == "" {
		resolved.Password = os.Getenv(constants.EnvPassword)
	}

	if resolved.Password == "" {
		return nil, &virl2.InitializationError{Message: "no password given", Err: virl2.ErrPasswordRequired}
	}

	if resolved.CACertFile == "" {
		resolved.CACertFile = os.Getenv(constants.EnvCABundle)
	}

	return &resolved, nil
}

// normalizeURL turns the resolved controller address into the API base URL.
// A bare hostname gets an https scheme, http is upgraded to https unless
// allowHTTP is set, any path prefix is preserved, and the result always ends
// with the api/v0 segment.
func normalizeURL(raw string, allowHTTP bool) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &virl2.InitializationError{Message: "invalid URL " + raw, Err: err}
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !allowHTTP {
			parsed.Scheme = "https"
		}
	default:
		return "", &virl2.InitializationError{
			Message: fmt.Sprintf("invalid URL scheme %q", parsed.Scheme),
			Err:     virl2.ErrInvalidURLScheme,
		}
	}

	if parsed.Hostname() == "" {
		return "", virl2.NewInitializationError("no host in URL %s", raw)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/" + constants.APIPrefix
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String(), nil
}
