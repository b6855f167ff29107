package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/formclip/internal/providers/clipboard"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/service"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry  *service.Registry
	clipboard *clipboard.Service
	scraper   *scraper.Provider
	tracer    *tracing.Tracer
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	registry *service.Registry,
	clip *clipboard.Service,
	scr *scraper.Provider,
	tracer *tracing.Tracer,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry:  registry,
		clipboard: clip,
		scraper:   scr,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Routes registers every endpoint on r.
func (h *Handlers) Routes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/scan", h.Scan)
	v1.POST("/overlay", h.Overlay)

	v1.POST("/clipboard", h.Copy)
	v1.GET("/clipboard", h.Current)
	v1.DELETE("/clipboard", h.Clear)
	v1.POST("/fill", h.Fill)

	v1.GET("/records/:identifier", h.History)
	v1.POST("/records/:identifier", h.Save)

	v1.GET("/services", h.ListServices)
	v1.POST("/tools/:id", h.ExecuteTool)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "formclip",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	_, err := h.clipboard.Current(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"version":          Version,
		"service_registry": h.registry.Stats(),
		"clipboard":        gin.H{"has_current": err == nil},
	})
}

// trace opens a child span of the request span. The returned func ends it.
func (h *Handlers) trace(c *gin.Context, name string) (context.Context, *tracing.Span, func(error)) {
	span, ctx := h.tracer.StartSpan(c.Request.Context(), name)
	return ctx, span, func(err error) {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
		h.tracer.Submit(span)
	}
}
