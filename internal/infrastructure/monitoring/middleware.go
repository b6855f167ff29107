package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records one request count and latency sample per request.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := NewTimer()

		c.Next()

		// Route templates keep label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), timer.Elapsed())
	}
}

// Timer measures how long an operation took.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
