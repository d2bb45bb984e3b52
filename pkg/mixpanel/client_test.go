package mixpanel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.MixpanelConfig{Token: "proj-token", APIHost: srv.URL + "/"}, logger.Nop())
	require.NoError(t, err)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(config.MixpanelConfig{}, nil)
	require.Error(t, err)
}

func TestTrack(t *testing.T) {
	var (
		gotPath string
		events  []map[string]any
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&events))
		_, _ = w.Write([]byte("1"))
	})

	err := c.Track(context.Background(), "User Created", "user-1", map[string]any{"email": "a@b.io"})
	require.NoError(t, err)

	assert.Equal(t, "/track", gotPath)
	require.Len(t, events, 1)
	assert.Equal(t, "User Created", events[0]["event"])
	props := events[0]["properties"].(map[string]any)
	assert.Equal(t, "proj-token", props["token"])
	assert.Equal(t, "user-1", props["distinct_id"])
	assert.Equal(t, "a@b.io", props["email"])
	assert.EqualValues(t, 1700000000000, props["time"])
}

func TestSetProfile(t *testing.T) {
	var (
		gotPath string
		updates []map[string]any
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&updates))
		_, _ = w.Write([]byte("1"))
	})

	err := c.SetProfile(context.Background(), "user-1", map[string]any{"$email": "a@b.io"})
	require.NoError(t, err)

	assert.Equal(t, "/engage", gotPath)
	require.Len(t, updates, 1)
	assert.Equal(t, "proj-token", updates[0]["$token"])
	assert.Equal(t, "user-1", updates[0]["$distinct_id"])
	assert.Equal(t, map[string]any{"$email": "a@b.io"}, updates[0]["$set"])
}

func TestSetProfileRequiresDistinctID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})
	require.Error(t, c.SetProfile(context.Background(), "", nil))
}

func TestPostReportsRejections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0"))
	})
	require.Error(t, c.Track(context.Background(), "Profile Visit", "u", nil))

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	require.Error(t, c.Track(context.Background(), "Profile Visit", "u", nil))
}
