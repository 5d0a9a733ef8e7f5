package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mf/search", r.URL.Path)
		assert.Equal(t, "hdfc top", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"schemeCode":100,"schemeName":"HDFC Top 100"}]`))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL+"/").Get(context.Background(), "/mf/search?q=hdfc+top")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"schemeCode":100,"schemeName":"HDFC Top 100"}]`, string(body))
}

func TestClientGet_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), "/mf/1")
	assert.Error(t, err)
}

func TestClientGet_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), "/mf/1")
	assert.Error(t, err)
}

func TestClientGet_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL).Get(ctx, "/mf/1")
	assert.Error(t, err)
}
