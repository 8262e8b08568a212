package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPClient(t *testing.T) {
	client := GetHTTPClient()
	assert.NotNil(t, client)
	assert.NotZero(t, client.Timeout)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/c.yaml"))
	assert.True(t, IsURL("HTTP://example.com"))
	assert.False(t, IsURL("./coefficients.yaml"))
	assert.False(t, IsURL("/etc/houseval/c.json"))
	assert.False(t, IsURL("ftp://example.com"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, clientAgent, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("intercept: 1\n"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("a", maxDocumentBytes+10)))
		case "/fail":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	b, err := Fetch(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "intercept: 1\n", string(b))

	_, err = Fetch(ctx, srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrorURLNotFound)

	_, err = Fetch(ctx, srv.URL+"/big")
	assert.ErrorIs(t, err, ErrorTooLarge)

	_, err = Fetch(ctx, srv.URL+"/fail")
	assert.ErrorContains(t, err, "502")

	_, err = Fetch(ctx, "file:///etc/passwd")
	assert.ErrorIs(t, err, ErrorUnsupportedScheme)
}
