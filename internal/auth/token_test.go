package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/virl2-client/internal/auth"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

func TestPasswordTokenManager_GetToken(t *testing.T) {
	t.Parallel()

	var logins int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&logins, 1)

		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, "/api/v0/authenticate", request.URL.Path)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

		var credentials map[string]string

		err := json.NewDecoder(request.Body).Decode(&credentials)
		require.NoError(t, err)
		assert.Equal(t, "test", credentials["username"])
		assert.Equal(t, "pa$$", credentials["password"])

		_ = json.NewEncoder(writer).Encode("7bbcan78a98bch7nh3cm7hao3nc7")
	}))
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		AuthURL:  server.URL + "/api/v0/authenticate",
		Username: "test",
		Password: "pa$$",
	})

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7bbcan78a98bch7nh3cm7hao3nc7", token)

	// A second call reuses the stored token.
	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7bbcan78a98bch7nh3cm7hao3nc7", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
}

func TestPasswordTokenManager_RefreshToken(t *testing.T) {
	t.Parallel()

	var logins int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		count := atomic.AddInt32(&logins, 1)

		if count == 1 {
			_ = json.NewEncoder(writer).Encode("first-token")

			return
		}

		_ = json.NewEncoder(writer).Encode("second-token")
	}))
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		AuthURL:  server.URL + "/api/v0/authenticate",
		Username: "test",
		Password: "pa$$",
	})

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first-token", token)

	err = manager.RefreshToken(context.Background())
	require.NoError(t, err)

	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second-token", token)
	assert.Equal(t, int32(2), atomic.LoadInt32(&logins))
}

func TestPasswordTokenManager_LoginFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		_, _ = writer.Write([]byte(`{"description": "bad credentials"}`))
	}))
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		AuthURL:  server.URL + "/api/v0/authenticate",
		Username: "test",
		Password: "wrong",
	})

	_, err := manager.GetToken(context.Background())
	require.Error(t, err)

	apiErr := virl2.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, string(apiErr.Body), "bad credentials")
}

func TestPasswordTokenManager_InvalidateForcesRelogin(t *testing.T) {
	t.Parallel()

	var logins int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&logins, 1)
		_ = json.NewEncoder(writer).Encode("token")
	}))
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		AuthURL:  server.URL + "/api/v0/authenticate",
		Username: "test",
		Password: "pa$$",
	})

	_, err := manager.GetToken(context.Background())
	require.NoError(t, err)

	manager.Invalidate()

	_, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&logins))
}
