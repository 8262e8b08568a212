package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"
)

// maxDocumentBytes caps the size of a fetched document.
const maxDocumentBytes = 1 << 20

var (
	ErrorURLNotFound       = errors.New("URL not found")
	ErrorTooLarge          = errors.New("response body too large")
	ErrorUnsupportedScheme = errors.New("unsupported URL scheme")
)

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Fetch downloads the body at url.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	if !IsURL(url) {
		return nil, fmt.Errorf("%w: %s", ErrorUnsupportedScheme, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)
	req.Header.Set("Accept", "application/yaml, application/json, text/plain")

	resp, err := GetHTTPClient().Do(req) //nolint:gosec // URL comes from local config
	if err != nil {
		return nil, fmt.Errorf("error executing HTTP Get request: %w", err)
	}
	defer resp.Body.Close()
	debugResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrorURLNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if len(b) > maxDocumentBytes {
		return nil, ErrorTooLarge
	}
	return b, nil
}

func debugResponse(resp *http.Response) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if dump, err := httputil.DumpResponse(resp, false); err == nil {
		slog.Debug("http response", "url", resp.Request.URL.String(), "dump", string(dump))
	}
}
