package tracing

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header names used for propagation.
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// TraceID identifies one request flow, from copy through fill.
type TraceID string

// SpanID identifies one stage inside a trace.
type SpanID string

// Span times one stage. Spans are not safe for concurrent mutation; each is
// owned by the goroutine that started it until Submit.
type Span struct {
	TraceID    TraceID
	SpanID     SpanID
	ParentID   SpanID
	Name       string
	StartTime  time.Time
	Duration   time.Duration
	StatusCode int
	Err        error

	fields []zap.Field
}

// SetTag attaches a string attribute.
func (s *Span) SetTag(key, value string) {
	s.fields = append(s.fields, zap.String(key, value))
}

// SetCount attaches a numeric attribute such as a field or mapping count.
func (s *Span) SetCount(key string, n int) {
	s.fields = append(s.fields, zap.Int(key, n))
}

// SetStatus records the HTTP status the stage ended with.
func (s *Span) SetStatus(code int) {
	s.StatusCode = code
}

// SetError marks the span failed. A span without a status becomes a 500.
func (s *Span) SetError(err error) {
	s.Err = err
	if s.StatusCode == 0 {
		s.StatusCode = http.StatusInternalServerError
	}
}

// Finish stops the clock.
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// Tracer hands finished spans to a background writer so request goroutines
// never wait on logging.
type Tracer struct {
	service string
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan *Span
	done   chan struct{}
}

const queueSize = 1024

// New starts a tracer that logs spans for service.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger.With(zap.String("service", service)),
		queue:   make(chan *Span, queueSize),
		done:    make(chan struct{}),
	}
	go t.drain()
	return t
}

// StartSpan opens a span under whatever span ctx already carries.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	span := &Span{
		TraceID:   GetTraceID(ctx),
		SpanID:    SpanID(uuid.NewString()),
		ParentID:  GetSpanID(ctx),
		Name:      name,
		StartTime: time.Now(),
	}
	if span.TraceID == "" {
		span.TraceID = TraceID(uuid.NewString())
	}
	return span, withIDs(ctx, span.TraceID, span.SpanID)
}

// Submit queues a finished span. Spans are dropped when the queue is full
// or the tracer is closed.
func (t *Tracer) Submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- span:
	default:
		t.logger.Warn("Trace queue full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("operation", span.Name),
		)
	}
}

// Close flushes queued spans. It is safe to call more than once.
func (t *Tracer) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}

func (t *Tracer) drain() {
	defer close(t.done)
	for span := range t.queue {
		t.write(span)
	}
}

func (t *Tracer) write(span *Span) {
	fields := make([]zap.Field, 0, len(span.fields)+6)
	fields = append(fields,
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
	)
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	if span.StatusCode != 0 {
		fields = append(fields, zap.Int("status", span.StatusCode))
	}
	fields = append(fields, span.fields...)

	if span.Err != nil {
		t.logger.Error("span completed with error", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type ctxKey int

const (
	traceKey ctxKey = iota
	spanKey
)

func withIDs(ctx context.Context, trace TraceID, span SpanID) context.Context {
	if trace != "" {
		ctx = context.WithValue(ctx, traceKey, trace)
	}
	if span != "" {
		ctx = context.WithValue(ctx, spanKey, span)
	}
	return ctx
}

// GetTraceID returns the trace ID carried by ctx, if any.
func GetTraceID(ctx context.Context) TraceID {
	id, _ := ctx.Value(traceKey).(TraceID)
	return id
}

// GetSpanID returns the innermost span ID carried by ctx, if any.
func GetSpanID(ctx context.Context) SpanID {
	id, _ := ctx.Value(spanKey).(SpanID)
	return id
}

// Extract continues a trace started by the caller of an inbound request.
func Extract(ctx context.Context, h http.Header) context.Context {
	return withIDs(ctx, TraceID(h.Get(HeaderTraceID)), SpanID(h.Get(HeaderSpanID)))
}

// Inject copies the trace carried by ctx onto outbound headers.
func Inject(ctx context.Context, h http.Header) {
	if id := GetTraceID(ctx); id != "" {
		h.Set(HeaderTraceID, string(id))
	}
	if id := GetSpanID(ctx); id != "" {
		h.Set(HeaderSpanID, string(id))
	}
}
