package doctolib

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":0,"availabilities":[]}`))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL, "", 0, 0, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"availabilities":[]}`, string(body))
	assert.Equal(t, DefaultUserAgent, userAgent)
}

func TestClient_FetchCustomUserAgent(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "checker/1.0", 0, 0, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "checker/1.0", userAgent)
}

func TestClient_FetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0, 0, nil).Fetch(context.Background())

	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, http.StatusForbidden, nerr.StatusCode)
	assert.Contains(t, nerr.Error(), "blocked")
}

func TestClient_FetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", 0, 0, nil).Fetch(context.Background())

	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr))
	assert.Zero(t, nerr.StatusCode)
}

func TestClient_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, "", 50*time.Millisecond, 0, nil).Fetch(context.Background())

	var nerr *NetworkError
	assert.True(t, errors.As(err, &nerr))
}

func TestClient_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("http://127.0.0.1:1", "", 0, 60, nil).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
