package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so components can take one optionally.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Scan metrics
	Scans         *prometheus.CounterVec
	FieldsScanned *prometheus.HistogramVec

	// Match metrics
	Matches         *prometheus.CounterVec
	MatchConfidence *prometheus.HistogramVec
	DelegateCalls   *prometheus.CounterVec
	DelegateLatency prometheus.Histogram

	// Fill metrics
	Fills        *prometheus.CounterVec
	FieldResults *prometheus.CounterVec
	FillDuration prometheus.Histogram

	// Clipboard metrics
	ClipboardWrites *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint.
type Snapshot struct {
	Scans         int64 `json:"scans"`
	Fills         int64 `json:"fills"`
	FieldsFilled  int64 `json:"fieldsFilled"`
	FieldsFailed  int64 `json:"fieldsFailed"`
	DelegateFails int64 `json:"delegateFailures"`
}

// NewMetrics creates a collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formclip_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		Scans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_scans_total",
				Help: "Total number of document scans",
			},
			[]string{"mode", "status"},
		),
		FieldsScanned: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formclip_scan_fields",
				Help:    "Fields produced per scan",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
			[]string{"mode"},
		),

		Matches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_matches_total",
				Help: "Mappings produced, by strategy and method",
			},
			[]string{"strategy", "method"},
		),
		MatchConfidence: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formclip_match_confidence",
				Help:    "Confidence of produced mappings",
				Buckets: []float64{.3, .4, .5, .6, .7, .8, .9, 1},
			},
			[]string{"strategy"},
		),
		DelegateCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_delegate_calls_total",
				Help: "Calls to the semantic mapping delegate",
			},
			[]string{"status"},
		),
		DelegateLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "formclip_delegate_duration_seconds",
				Help:    "Delegate call duration including retries",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),

		Fills: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_fills_total",
				Help: "Fill batches executed",
			},
			[]string{"status"},
		),
		FieldResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_fill_fields_total",
				Help: "Per-field fill results",
			},
			[]string{"type", "status"},
		),
		FillDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "formclip_fill_duration_seconds",
				Help:    "Fill batch duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		ClipboardWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_clipboard_writes_total",
				Help: "Clipboard store writes",
			},
			[]string{"kind"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "formclip_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formclip_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScan records one scan and how many fields it produced.
func (m *Metrics) RecordScan(mode string, fields int, err error) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(mode, status(err)).Inc()
	m.FieldsScanned.WithLabelValues(mode).Observe(float64(fields))

	m.mu.Lock()
	m.snapshot.Scans++
	m.mu.Unlock()
}

// RecordMatch records one produced mapping.
func (m *Metrics) RecordMatch(strategy, method string, confidence float64) {
	if m == nil {
		return
	}
	m.Matches.WithLabelValues(strategy, method).Inc()
	m.MatchConfidence.WithLabelValues(strategy).Observe(confidence)
}

// RecordDelegateCall records a delegate round trip, retries included.
func (m *Metrics) RecordDelegateCall(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DelegateCalls.WithLabelValues(status(err)).Inc()
	m.DelegateLatency.Observe(duration.Seconds())
	if err != nil {
		m.mu.Lock()
		m.snapshot.DelegateFails++
		m.mu.Unlock()
	}
}

// RecordFieldResult records the outcome of filling one field.
func (m *Metrics) RecordFieldResult(fieldType string, ok bool) {
	if m == nil {
		return
	}
	s := "success"
	if !ok {
		s = "error"
	}
	m.FieldResults.WithLabelValues(fieldType, s).Inc()

	m.mu.Lock()
	if ok {
		m.snapshot.FieldsFilled++
	} else {
		m.snapshot.FieldsFailed++
	}
	m.mu.Unlock()
}

// RecordFill records a finished fill batch.
func (m *Metrics) RecordFill(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	s := "success"
	if !success {
		s = "partial"
	}
	m.Fills.WithLabelValues(s).Inc()
	m.FillDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Fills++
	m.mu.Unlock()
}

// RecordClipboardWrite records a store write of the given kind.
func (m *Metrics) RecordClipboardWrite(kind string) {
	if m == nil {
		return
	}
	m.ClipboardWrites.WithLabelValues(kind).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// GetSnapshot returns a copy of the running totals.
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
