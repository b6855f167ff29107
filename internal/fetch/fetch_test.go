package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte(`<form><input name="q" value="caf\xe9"></form>`))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Headers = map[string]string{"X-Test": "yes"}
	res, err := Page(context.Background(), server.URL, opts)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/html; charset=iso-8859-1", res.ContentType)
	assert.Contains(t, string(res.HTML), `name="q"`)
}

func TestPageErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	tests := []struct {
		name    string
		url     string
		message string
	}{
		{"no scheme", "example.com/form", "invalid URL"},
		{"ftp", "ftp://example.com/form", "invalid URL"},
		{"not found", server.URL, "HTTP 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Page(context.Background(), tt.url, nil)
			require.Error(t, err)
			var fetchErr *Error
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tt.message, fetchErr.Message)
		})
	}
}

func TestRender(t *testing.T) {
	if testing.Short() {
		t.Skip("headless browser test")
	}
	found := false
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			found = true
			break
		}
	}
	if !found {
		t.Skip("chrome not installed")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><form id="f"></form><script>
			var i = document.createElement("input");
			i.name = "built";
			document.getElementById("f").appendChild(i);
		</script></body></html>`))
	}))
	defer server.Close()

	html, err := Render(context.Background(), server.URL, 20*time.Second)
	require.NoError(t, err)
	assert.Contains(t, html, `name="built"`)
}
