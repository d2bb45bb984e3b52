package auth0

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]string
}

func newManagementServer(t *testing.T, status int) (*httptest.Server, *[]recordedCall, *sync.Mutex) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.NotEmpty(t, r.PostForm.Get("audience"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"mgmt-token","token_type":"Bearer","expires_in":3600}`))
			return
		}

		call := recordedCall{Method: r.Method, Path: r.URL.EscapedPath(), Auth: r.Header.Get("Authorization")}
		if r.Body != nil && r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&call.Body)
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &mu
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(config.Auth0Config{
		Domain:       baseURL,
		ClientID:     "client",
		ClientSecret: "secret",
		Timeout:      2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.Auth0Config{Domain: "tenant.auth0.com"}, nil)
	require.Error(t, err)
}

func TestLinkIdentity(t *testing.T) {
	srv, calls, mu := newManagementServer(t, http.StatusCreated)
	c := newTestClient(t, srv.URL)

	err := c.LinkIdentity(context.Background(), "auth0|primary", "google-oauth2|12345")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v2/users/auth0%7Cprimary/identities", got.Path)
	assert.Equal(t, "Bearer mgmt-token", got.Auth)
	assert.Equal(t, map[string]string{"provider": "google-oauth2", "user_id": "12345"}, got.Body)
}

func TestLinkIdentitySameSubjectIsNoop(t *testing.T) {
	srv, calls, mu := newManagementServer(t, http.StatusCreated)
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.LinkIdentity(context.Background(), "auth0|same", "auth0|same"))

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, *calls)
}

func TestUnlinkIdentity(t *testing.T) {
	srv, calls, mu := newManagementServer(t, http.StatusOK)
	c := newTestClient(t, srv.URL)

	err := c.UnlinkIdentity(context.Background(), "auth0|primary", "google-oauth2", "google-oauth2|12345")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodDelete, (*calls)[0].Method)
	assert.Equal(t, "/api/v2/users/auth0%7Cprimary/identities/google-oauth2/12345", (*calls)[0].Path)
}

func TestLinkIdentityReturnsAPIError(t *testing.T) {
	srv, _, _ := newManagementServer(t, http.StatusBadRequest)
	c := newTestClient(t, srv.URL)

	err := c.LinkIdentity(context.Background(), "auth0|primary", "auth0|secondary")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestSplitSubject(t *testing.T) {
	p, id := SplitSubject("google-oauth2|987")
	assert.Equal(t, "google-oauth2", p)
	assert.Equal(t, "987", id)

	p, id = SplitSubject("oauth2|siwe|eip155:1:0xabc")
	assert.Equal(t, "oauth2", p)
	assert.Equal(t, "siwe|eip155:1:0xabc", id)

	p, id = SplitSubject("plain")
	assert.Equal(t, "auth0", p)
	assert.Equal(t, "plain", id)
}
