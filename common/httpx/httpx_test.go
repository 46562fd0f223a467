package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchHost(t *testing.T) {
	assert.True(t, matchHost("*", "anything.example.com"))
	assert.True(t, matchHost("localhost", "localhost"))
	assert.True(t, matchHost("LOCALHOST", "localhost"))
	assert.True(t, matchHost("*.example.com", "api.example.com"))
	assert.True(t, matchHost("*.example.com", "example.com"))
	assert.False(t, matchHost("*.example.com", "example.org"))
	assert.False(t, matchHost("example.com", "api.example.com"))
}

func TestHostAllowlistBlocks(t *testing.T) {
	c := NewFromConfig(&config.HTTPClientConfig{
		HostAllowlist: []string{"localhost"},
	})
	req, err := http.NewRequest(http.MethodGet, "http://evil.example.com/x", nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
}

func TestRetrySucceedsAfterServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{Retry: 2, BackoffMinMs: 1, BackoffMaxMs: 2})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{
		Retry: 0, BackoffMinMs: 1, BackoffMaxMs: 2,
		MaxConsecutiveFailures: 2, CircuitOpenSeconds: 60,
	})
	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, _ := c.Do(req)
		if resp != nil {
			resp.Body.Close()
		}
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
