package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRoundTripsSuccessfully(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tr := New(Config{})
	defer tr.Destroy()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := tr.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewFillsDefaults(t *testing.T) {
	tr := New(Config{})
	defer tr.Destroy()
	assert.Equal(t, 120*time.Second, tr.client.Timeout)
	assert.Equal(t, 60*time.Second, tr.rt.IdleConnTimeout)
}

func TestDestroyClosesIdleConnections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(Config{})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := tr.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	// Should not panic and should be safe to call more than once.
	tr.Destroy()
	tr.Destroy()
}
