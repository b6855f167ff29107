package tracing

import (
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens one span per request, continuing the caller's trace
// when X-Trace-ID is present, and echoes the IDs back as response headers.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		span, ctx := tracer.StartSpan(Extract(c.Request.Context(), c.Request.Header), c.Request.Method+" "+route)
		span.SetTag("http.path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		if err := c.Errors.Last(); err != nil {
			span.SetError(err)
		}
		span.Finish()
		tracer.Submit(span)
	}
}
