package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	return out.GetCounter().GetValue()
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordScan("extract", 3, nil)
		m.RecordMatch("heuristic", "score", 0.9)
		m.RecordDelegateCall(time.Second, errors.New("down"))
		m.RecordFieldResult("text", true)
		m.RecordFill(true, time.Second)
		m.RecordClipboardWrite("current")
		m.IncWSConnections()
	})
	assert.Equal(t, Snapshot{}, m.GetSnapshot())
}

func TestRecordFill(t *testing.T) {
	m := NewMetrics()
	m.RecordFieldResult("text", true)
	m.RecordFieldResult("select", false)
	m.RecordFill(false, 10*time.Millisecond)

	assert.Equal(t, 1.0, value(t, m.FieldResults.WithLabelValues("text", "success")))
	assert.Equal(t, 1.0, value(t, m.Fills.WithLabelValues("partial")))

	snap := m.GetSnapshot()
	assert.Equal(t, int64(1), snap.Fills)
	assert.Equal(t, int64(1), snap.FieldsFilled)
	assert.Equal(t, int64(1), snap.FieldsFailed)
}

func TestSeparateRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordScan("extract", 2, nil)
	assert.Equal(t, 1.0, value(t, a.Scans.WithLabelValues("extract", "success")))
	assert.Equal(t, 0.0, value(t, b.Scans.WithLabelValues("extract", "success")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1.0, value(t, m.RequestsTotal.WithLabelValues("GET", "/items/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "formclip_http_requests_total")
}
