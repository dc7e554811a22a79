package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

func TestConnect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/connect", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var host mesh.Host
		require.NoError(t, json.NewDecoder(r.Body).Decode(&host))
		now := time.Now().UTC()
		host.LastSeen = &now
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(host)
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)

	updated, err := c.Connect(context.Background(), mesh.Host{
		Name:        "alice",
		MeshAddress: netip.MustParseAddr("10.42.0.1"),
		PublicKey:   "alice-public",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Name)
	assert.NotNil(t, updated.LastSeen)
}

func TestConnect_Conflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "Conflict",
			"message": `host with address "10.42.0.1" already exists`,
			"code":    http.StatusConflict,
		})
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.Connect(context.Background(), mesh.Host{Name: "bob"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "already exists")
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ping", r.URL.Path)
		_, _ = w.Write([]byte("pong"))
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestRemoveHost_SendsToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/remove-host", r.URL.Path)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer ts.Close()

	c, err := New(ts.URL, WithToken("secret-token"))
	require.NoError(t, err)
	assert.NoError(t, c.RemoveHost(context.Background(), "alice"))
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
