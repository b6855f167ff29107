// Package middleware provides the HTTP middleware stack of the API.
//
// Middleware stack includes:
//   - RequestID: X-Request-ID propagation, generated with uuid when absent
//   - Logger: one structured log line per request
//   - CORS: cross-origin access for the browser extension and overlays
//   - RateLimit: per-client token bucket
//   - BodyLimit: caps request bodies before they are parsed
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
