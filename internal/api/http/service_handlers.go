package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// ListServices lists registered services. With q set the list is ranked
// by relevance instead.
func (h *Handlers) ListServices(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		services := h.registry.Discover(q, limit)
		c.JSON(http.StatusOK, gin.H{"services": services, "count": len(services)})
		return
	}

	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}
	services := h.registry.List(category)
	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    h.registry.Stats(),
	})
}

// ExecuteTool runs a provider tool. The body is the tool's parameter
// object and may be empty.
func (h *Handlers) ExecuteTool(c *gin.Context) {
	toolID := c.Param("id")

	var params map[string]interface{}
	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, err, true)
		return
	}

	ctx, span, end := h.trace(c, "tool.execute")
	span.SetTag("tool", toolID)
	result, err := h.registry.Execute(ctx, toolID, params, toolContext(c))
	end(err)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	if !result.Success {
		h.logger.Debug("Tool reported failure",
			zap.String("tool", toolID),
			zap.Stringp("error", result.Error))
	}
	c.JSON(http.StatusOK, result)
}
