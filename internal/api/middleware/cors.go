package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultCORSConfig allows any origin: the overlay and browser extension
// call the API from whichever site holds the form.
func DefaultCORSConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = []string{"*"}
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AddAllowHeaders("Accept", "Authorization", HeaderRequestID, HeaderSourceURL)
	cfg.AddExposeHeaders(HeaderRequestID)
	return cfg
}

// CORSConfigFor narrows the default configuration to origins. An empty
// list keeps the wildcard.
func CORSConfigFor(origins []string) cors.Config {
	cfg := DefaultCORSConfig()
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// CORS builds the middleware. Invalid origin lists panic at startup.
func CORS(cfg cors.Config) gin.HandlerFunc {
	return cors.New(cfg)
}
