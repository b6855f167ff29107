/*
Package monitoring provides Prometheus metrics for scans, matches, fills
and the HTTP surface.

Metrics live on a dedicated registry rather than the global default, so
tests and embedded uses can create as many collectors as they like.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer()
	outcome := executor.Fill(ctx, doc, mappings)
	metrics.RecordFill(outcome.Success, timer.Elapsed())

All record methods accept a nil receiver.
*/
package monitoring
