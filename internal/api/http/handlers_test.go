package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formclip/internal/api/middleware"
	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/formclip/internal/providers/clipboard"
	"github.com/GriffinCanCode/formclip/internal/providers/filler"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/providers/transform"
	"github.com/GriffinCanCode/formclip/internal/service"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

const sourcePage = `<html><body><form>
  <label for="fn">First Name</label><input id="fn" name="firstName" value="Jane">
  <label for="ln">Last Name</label><input id="ln" name="lastName" value="Doe">
  <label for="em">Email</label><input id="em" type="email" name="email" value="jane@example.com">
</form></body></html>`

const targetPage = `<html><body><form>
  <label for="a">First Name</label><input id="a" name="first">
  <label for="b">Last Name</label><input id="b" name="last">
  <label for="c">Email Address</label><input id="c" name="email">
</form></body></html>`

type testServer struct {
	router  *gin.Engine
	metrics *monitoring.Metrics
	clip    *clipboard.Service
}

func setup(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("formclip-test", nil)
	t.Cleanup(tracer.Close)

	scr := scraper.NewProvider(nil, nil)
	strategy := matcher.NewHeuristic(matcher.DefaultConfig(), nil, nil, metrics)
	clip := clipboard.NewService(
		scr.Scanner(),
		scr.Grouper(),
		strategy,
		filler.NewExecutor(dom.NewDispatcher(0), transform.DefaultOptions(), nil, metrics),
		clipboard.NewMemoryStore(0),
		nil,
		metrics,
	)

	registry := service.NewRegistry()
	require.NoError(t, registry.Register(clipboard.NewProvider(clip)))
	require.NoError(t, registry.Register(scr))
	require.NoError(t, registry.Register(matcher.NewProvider(strategy, scr.Scanner())))

	router := gin.New()
	router.Use(middleware.RequestID(), tracing.HTTPMiddleware(tracer), monitoring.Middleware(metrics))
	NewHandlers(registry, clip, scr, tracer, metrics, nil).Routes(router)

	return &testServer{router: router, metrics: metrics, clip: clip}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
		contentType = "text/html; charset=utf-8"
	default:
		data, _ := sonic.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := setup(t)

	w := s.do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	stats := body["service_registry"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["total_services"])
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(tracing.HeaderTraceID))
}

func TestScan(t *testing.T) {
	s := setup(t)

	t.Run("json extract", func(t *testing.T) {
		w := s.do("POST", "/v1/scan", gin.H{"html": sourcePage})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.EqualValues(t, 3, body["count"])
		assert.Equal(t, "extract", body["mode"])
		assert.Len(t, body["entities"], 1)
	})

	t.Run("json target", func(t *testing.T) {
		w := s.do("POST", "/v1/scan", gin.H{"html": targetPage, "mode": "target"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.EqualValues(t, 3, body["count"])
		assert.NotContains(t, body, "entities")
	})

	t.Run("raw html body", func(t *testing.T) {
		w := s.do("POST", "/v1/scan?mode=target", []byte(targetPage))
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 3, decode(t, w)["count"])
	})
}

func TestScanErrors(t *testing.T) {
	s := setup(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"missing html", gin.H{"mode": "extract"}, http.StatusBadRequest},
		{"bad mode", gin.H{"html": sourcePage, "mode": "both"}, http.StatusBadRequest},
		{"no controls", gin.H{"html": "<p>hello</p>"}, http.StatusUnprocessableEntity},
		{"binary body", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj"), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do("POST", "/v1/scan", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestCopyAndFill(t *testing.T) {
	s := setup(t)

	w := s.do("GET", "/v1/clipboard", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("POST", "/v1/clipboard", gin.H{"html": sourcePage, "url": "https://crm.example.com/1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snap types.ClipboardSnapshot
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "https://crm.example.com/1", snap.SourceURL)
	assert.Equal(t, 3, snap.Metadata.FieldCount)

	w = s.do("GET", "/v1/clipboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, snap.ID, decode(t, w)["id"])

	w = s.do("POST", "/v1/fill", gin.H{"html": targetPage})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var filled struct {
		Outcome types.FillOutcome `json:"outcome"`
		HTML    string            `json:"html"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &filled))
	assert.True(t, filled.Outcome.Success)
	assert.Equal(t, 3, filled.Outcome.FilledFields)
	assert.Contains(t, filled.HTML, `value="Jane"`)
	assert.Contains(t, filled.HTML, `value="jane@example.com"`)

	w = s.do("DELETE", "/v1/clipboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do("POST", "/v1/fill", gin.H{"html": targetPage})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFillPlanAndExplicitSnapshot(t *testing.T) {
	s := setup(t)

	w := s.do("POST", "/v1/clipboard", gin.H{"html": sourcePage})
	require.Equal(t, http.StatusCreated, w.Code)
	var snap types.ClipboardSnapshot
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &snap))
	require.NoError(t, s.clip.Clear(t.Context()))

	w = s.do("POST", "/v1/fill", gin.H{"html": targetPage, "snapshot": snap, "plan": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["count"])

	w = s.do("POST", "/v1/fill", gin.H{"html": targetPage, "snapshot": gin.H{"id": ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyNoData(t *testing.T) {
	s := setup(t)

	w := s.do("POST", "/v1/clipboard", gin.H{"html": `<form><input name="empty"></form>`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["error"], clipboard.ErrNoData.Error())
}

func TestRecords(t *testing.T) {
	s := setup(t)

	w := s.do("POST", "/v1/records/POL-7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing to save yet")

	require.Equal(t, http.StatusCreated, s.do("POST", "/v1/clipboard", gin.H{"html": sourcePage}).Code)

	w = s.do("POST", "/v1/records/POL-7", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "POL-7", decode(t, w)["identifier"])

	w = s.do("GET", "/v1/records/POL-7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = s.do("GET", "/v1/records/unknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])
}

func TestOverlay(t *testing.T) {
	s := setup(t)

	w := s.do("POST", "/v1/overlay", gin.H{"html": sourcePage})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["count"])
	first := body["highlights"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Jane", first["value"])
	assert.Equal(t, "First Name", first["label"])
}

func TestServices(t *testing.T) {
	s := setup(t)

	w := s.do("GET", "/v1/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["services"], 3)

	w = s.do("GET", "/v1/services?category=clipboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	services := decode(t, w)["services"].([]interface{})
	require.Len(t, services, 1)
	assert.Equal(t, "clipboard", services[0].(map[string]interface{})["id"])

	w = s.do("GET", "/v1/services?q=clipboard&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteTool(t *testing.T) {
	s := setup(t)

	w := s.do("POST", "/v1/tools/scraper.scan", gin.H{"html": sourcePage})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["data"].(map[string]interface{})["count"])

	w = s.do("POST", "/v1/tools/clipboard.current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	w = s.do("POST", "/v1/tools/nothing.here", gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("POST", "/v1/tools/noseparator", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setup(t)

	require.Equal(t, http.StatusOK, s.do("POST", "/v1/scan", gin.H{"html": sourcePage}).Code)

	w := s.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "formclip_"), "custom collectors exported")
	assert.EqualValues(t, 1, s.metrics.GetSnapshot().Scans)
}
