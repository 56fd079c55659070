package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// TokenManager handles bearer token lifecycle for API requests.
type TokenManager interface {
	// GetToken returns a valid token, authenticating on first use.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken discards any stored token and authenticates again.
	RefreshToken(ctx context.Context) error
	// SetToken manually sets the stored token.
	SetToken(token string)
	// Invalidate drops the stored token without contacting the controller.
	Invalidate()
}

// tokenStore holds the current bearer token. The mutex only protects the
// store itself; callers are expected to use one client per goroutine.
type tokenStore struct {
	mutex sync.RWMutex
	token string
}

func (s *tokenStore) get() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

func (s *tokenStore) set(token string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// PasswordConfig configures a PasswordTokenManager.
type PasswordConfig struct {
	// AuthURL is the absolute authenticate endpoint, e.g.
	// "https://virl2/api/v0/authenticate".
	AuthURL  string
	Username string
	Password string

	// HTTPClient issues the login request; it carries the same TLS settings
	// as the rest of the transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// PasswordTokenManager exchanges a username/password for a bearer token via
// the controller's authenticate endpoint.
type PasswordTokenManager struct {
	config *PasswordConfig
	store  tokenStore
}

// NewPasswordTokenManager creates a password-based token manager.
func NewPasswordTokenManager(config *PasswordConfig) *PasswordTokenManager {
	return &PasswordTokenManager{config: config}
}

// GetToken returns the stored token, authenticating first if there is none.
func (m *PasswordTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.get(); token != "" {
		return token, nil
	}

	err := m.authenticate(ctx)
	if err != nil {
		return "", err
	}

	return m.store.get(), nil
}

// RefreshToken forces a fresh login regardless of any stored token.
func (m *PasswordTokenManager) RefreshToken(ctx context.Context) error {
	m.store.set("")

	return m.authenticate(ctx)
}

// SetToken manually sets the stored token.
func (m *PasswordTokenManager) SetToken(token string) {
	m.store.set(token)
}

// Invalidate drops the stored token.
func (m *PasswordTokenManager) Invalidate() {
	m.store.set("")
}

// authenticate POSTs the credentials and stores the returned token. The
// response body is a JSON-encoded string.
func (m *PasswordTokenManager) authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"username": m.config.Username,
		"password": m.config.Password,
	})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.AuthURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating authenticate request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := m.config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading authenticate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &virl2.APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     http.MethodPost,
			URL:        m.config.AuthURL,
			Body:       body,
		}
	}

	var token string

	err = json.Unmarshal(body, &token)
	if err != nil {
		return fmt.Errorf("parsing authenticate response: %w", err)
	}

	if token == "" {
		return virl2.ErrTokenUnavailable
	}

	m.store.set(token)

	return nil
}
