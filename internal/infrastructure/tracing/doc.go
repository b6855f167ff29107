/*
Package tracing provides lightweight request tracing.

# Overview

Every HTTP request gets a span. A span carries a trace ID (taken from the
X-Trace-ID header when the caller sends one, generated otherwise), its own
span ID, tags and timing. Handlers open child spans for the copy, match and
fill stages so one log query shows where a slow fill spent its time.

Completed spans are handed to a buffered collector that writes them to the
structured log. When the buffer is full spans are dropped, never blocking a
request.

# Usage

	tracer := tracing.New("formclip", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "clipboard.paste")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	span.SetTag("fields", "12")

# Headers

  - X-Trace-ID: identifier for the whole request flow
  - X-Span-ID: identifier for the current operation
*/
package tracing
