package client

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// newTestClient builds a fully authenticated client against a test server.
// The authenticate endpoint and the labs probe get default handlers unless
// the test provides its own.
func newTestClient(t *testing.T, handlers map[string]http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()

	if _, ok := handlers["/api/v0/authenticate"]; !ok {
		mux.HandleFunc("/api/v0/authenticate", func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode("test-token")
		})
	}

	if _, ok := handlers["/api/v0/labs"]; !ok {
		mux.HandleFunc("/api/v0/labs", func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode([]string{})
		})
	}

	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := &virl2.Config{Username: "test", Password: "pa$$", RaiseForAuthFailure: true}

	client, err := New(context.Background(), cfg, server.URL, server.URL+"/api/v0/")
	require.NoError(t, err)

	return client
}

// requestLog records the sequence of requests a test server saw.
type requestLog struct {
	mutex sync.Mutex
	calls []string
}

func (l *requestLog) record(request *http.Request) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.calls = append(l.calls, request.Method+" "+request.URL.Path)
}

func (l *requestLog) sequence() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return append([]string(nil), l.calls...)
}

func TestClientAuthenticationSequence(t *testing.T) {
	t.Parallel()

	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/authenticate", func(writer http.ResponseWriter, request *http.Request) {
		log.record(request)

		var credentials map[string]string

		err := json.NewDecoder(request.Body).Decode(&credentials)
		require.NoError(t, err)
		assert.Equal(t, "test", credentials["username"])
		assert.Equal(t, "pa$$", credentials["password"])

		_ = json.NewEncoder(writer).Encode("session-token")
	})
	mux.HandleFunc("/api/v0/labs", func(writer http.ResponseWriter, request *http.Request) {
		log.record(request)
		assert.Equal(t, "Bearer session-token", request.Header.Get("Authorization"))
		_ = json.NewEncoder(writer).Encode([]string{})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := &virl2.Config{Username: "test", Password: "pa$$", RaiseForAuthFailure: true}

	_, err := New(context.Background(), cfg, server.URL, server.URL+"/api/v0/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/v0/authenticate",
		"GET /api/v0/labs",
	}, log.sequence())
}

func TestClientRaiseForAuthFailure(t *testing.T) {
	t.Parallel()
	t.Run("failed login fails construction", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/api/v0/authenticate", func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		cfg := &virl2.Config{Username: "test", Password: "pa$$", RaiseForAuthFailure: true}

		_, err := New(context.Background(), cfg, server.URL, server.URL+"/api/v0/")
		require.Error(t, err)

		initErr := &virl2.InitializationError{}
		assert.True(t, errors.As(err, &initErr))
	})

	t.Run("failed probe fails construction", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/api/v0/authenticate", func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode("session-token")
		})
		mux.HandleFunc("/api/v0/labs", func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		cfg := &virl2.Config{Username: "test", Password: "pa$$", RaiseForAuthFailure: true}

		_, err := New(context.Background(), cfg, server.URL, server.URL+"/api/v0/")
		require.Error(t, err)

		initErr := &virl2.InitializationError{}
		assert.True(t, errors.As(err, &initErr))
	})

	t.Run("failure is deferred by default", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/api/v0/authenticate", func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		cfg := &virl2.Config{Username: "test", Password: "pa$$"}

		client, err := New(context.Background(), cfg, server.URL, server.URL+"/api/v0/")
		require.NoError(t, err)
		require.NotNil(t, client)
	})
}

// TestClientReauthenticatesOnce walks the full session-renewal flow: a 401
// on an operation triggers exactly one new login and one reissued request.
func TestClientReauthenticatesOnce(t *testing.T) {
	t.Parallel()

	log := &requestLog{}

	var waitCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/authenticate", func(writer http.ResponseWriter, request *http.Request) {
		log.record(request)
		_ = json.NewEncoder(writer).Encode(fmt.Sprintf("token-%d", len(log.sequence())))
	})
	mux.HandleFunc("/api/v0/labs", func(writer http.ResponseWriter, request *http.Request) {
		log.record(request)
		_ = json.NewEncoder(writer).Encode([]string{})
	})
	mux.HandleFunc("/api/v0/wait_for_lld_connected", func(writer http.ResponseWriter, request *http.Request) {
		log.record(request)

		waitCalls++
		if waitCalls == 1 {
			// Simulated token expiry.
			writer.WriteHeader(http.StatusUnauthorized)

			return
		}

		writer.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := &virl2.Config{Username: "test", Password: "pa$$", RaiseForAuthFailure: true}

	client, err := New(context.Background(), cfg, server.URL, server.URL+"/api/v0/")
	require.NoError(t, err)

	err = client.WaitForLLDConnected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/v0/authenticate",
		"GET /api/v0/labs",
		"GET /api/v0/wait_for_lld_connected",
		"POST /api/v0/authenticate",
		"GET /api/v0/wait_for_lld_connected",
	}, log.sequence())
}

// TestClientDoesNotLoopOnRepeated401 verifies the bounded retry: a second
// 401 after re-authentication surfaces as an error instead of looping.
func TestClientDoesNotLoopOnRepeated401(t *testing.T) {
	t.Parallel()

	var waitCalls int

	client := newTestClient(t, map[string]http.HandlerFunc{
		"/api/v0/wait_for_lld_connected": func(writer http.ResponseWriter, request *http.Request) {
			waitCalls++

			writer.WriteHeader(http.StatusUnauthorized)
		},
	})

	err := client.WaitForLLDConnected(context.Background())
	require.Error(t, err)
	assert.True(t, virl2.IsUnauthorized(err))
	assert.Equal(t, 2, waitCalls)
}

func TestClientWaitForLLDConnected(t *testing.T) {
	t.Parallel()

	var called bool

	client := newTestClient(t, map[string]http.HandlerFunc{
		"/api/v0/wait_for_lld_connected": func(writer http.ResponseWriter, request *http.Request) {
			called = true

			assert.Equal(t, "GET", request.Method)
			writer.WriteHeader(http.StatusOK)
		},
	})

	err := client.WaitForLLDConnected(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestClientString(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil)
	client.inputURL = "somehost"

	assert.Equal(t,
		`ClientLibrary("somehost", "test", "pa$$", true, false, true)`,
		client.String())
}

func TestBuildStandardClient(t *testing.T) {
	t.Parallel()
	t.Run("skip verify", func(t *testing.T) {
		t.Parallel()

		client, err := buildStandardClient(&virl2.Config{SkipVerify: true})
		require.NoError(t, err)

		transport, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
	})

	t.Run("CA bundle file", func(t *testing.T) {
		t.Parallel()

		// Borrow the httptest CA certificate for a valid PEM bundle.
		tlsServer := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		defer tlsServer.Close()

		bundle := filepath.Join(t.TempDir(), "cert.pem")
		block := &pem.Block{Type: "CERTIFICATE", Bytes: tlsServer.Certificate().Raw}
		require.NoError(t, os.WriteFile(bundle, pem.EncodeToMemory(block), 0600))

		client, err := buildStandardClient(&virl2.Config{CACertFile: bundle})
		require.NoError(t, err)

		transport, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		assert.NotNil(t, transport.TLSClientConfig.RootCAs)
	})

	t.Run("missing CA bundle fails", func(t *testing.T) {
		t.Parallel()

		_, err := buildStandardClient(&virl2.Config{CACertFile: "/nonexistent/cert.pem"})
		require.Error(t, err)

		initErr := &virl2.InitializationError{}
		assert.True(t, errors.As(err, &initErr))
	})
}
