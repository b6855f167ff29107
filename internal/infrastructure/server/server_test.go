package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/logging"
)

const sourcePage = `<form>
  <label for="fn">First Name</label><input id="fn" name="firstName" value="Jane">
  <label for="dob">Date of Birth</label><input id="dob" type="date" name="dob" value="1990-01-15">
</form>`

const targetPage = `<form>
  <label for="a">First Name</label><input id="a" name="first">
  <label for="b">Date of Birth</label><input id="b" name="birth">
</form>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Filler.SettleDelay = 0
	return cfg
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		strategy string
	}{
		{"defaults", func(*config.Config) {}, "heuristic"},
		{"no scripts", func(c *config.Config) { c.Filler.RunScripts = false }, "heuristic"},
		{"delegated without endpoint", func(c *config.Config) { c.Matcher.Mode = config.ModeDelegated }, "delegated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			engine, err := NewEngine(context.Background(), cfg, logging.NewNop(), nil)
			require.NoError(t, err)
			defer engine.Close()

			assert.Equal(t, tt.strategy, engine.Strategy.Name())
			assert.Len(t, engine.Registry.List(nil), 3)
		})
	}
}

func TestNewEngineErrors(t *testing.T) {
	dir := t.TempDir()
	badVocab := filepath.Join(dir, "vocab.ini")
	require.NoError(t, os.WriteFile(badVocab, []byte("x"), 0o644))

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"date layout", func(c *config.Config) { c.Filler.DateLayout = "YYYY.MM.DD" }},
		{"vocabulary format", func(c *config.Config) { c.Matcher.VocabularyFile = badVocab }},
		{"missing vocabulary", func(c *config.Config) { c.Matcher.VocabularyFile = filepath.Join(dir, "none.yaml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			_, err := NewEngine(context.Background(), cfg, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestEnginePersistentClipboard(t *testing.T) {
	cfg := testConfig(t)
	cfg.Clipboard.Dir = t.TempDir()
	cfg.Filler.DateLayout = "YYYY-MM-DD"
	ctx := context.Background()

	engine, err := NewEngine(ctx, cfg, nil, nil)
	require.NoError(t, err)
	_, err = engine.Clipboard.Copy(ctx, dom.MustParse(sourcePage), "")
	require.NoError(t, err)
	require.NoError(t, engine.Close())

	// a fresh engine on the same directory pastes what the first copied
	engine, err = NewEngine(ctx, cfg, nil, nil)
	require.NoError(t, err)
	defer engine.Close()

	target := dom.MustParse(targetPage)
	outcome, err := engine.Clipboard.Paste(ctx, target, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.FilledFields)

	n, err := dom.IDLocator("b").Resolve(target)
	require.NoError(t, err)
	assert.Equal(t, "1990-01-15", dom.Value(n))
}

func TestServerRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Development = true

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer srv.Close()

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			data, err := sonic.Marshal(body)
			require.NoError(t, err)
			buf.Write(data)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", "https://crm.example.com")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	w := do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do("POST", "/v1/clipboard", map[string]string{"html": sourcePage})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do("POST", "/v1/fill", map[string]string{"html": targetPage})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `01/15/1990`)

	w = do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "formclip_fills_total")
}

func TestServerBodyLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MaxBodyBytes = 64

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer srv.Close()

	body, _ := sonic.Marshal(map[string]string{"html": sourcePage})
	req := httptest.NewRequest("POST", "/v1/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServerRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
