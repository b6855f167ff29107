package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Scan lists the fields of a page. Extract scans also return entities.
func (h *Handlers) Scan(c *gin.Context) {
	doc, req, err := readPage(c)
	if err != nil {
		h.respondError(c, err, true)
		return
	}
	mode, err := scraper.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, span, end := h.trace(c, "scraper.scan")
	span.SetTag("mode", mode.String())
	fields, err := h.scraper.Scanner().Scan(doc, mode)
	h.metrics.RecordScan(mode.String(), len(fields), err)
	end(err)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	resp := gin.H{"fields": fields, "count": len(fields), "mode": mode.String()}
	if mode == scraper.ModeExtract {
		resp["entities"] = h.scraper.Grouper().Group(fields)
	}
	c.JSON(http.StatusOK, resp)
}

// Overlay returns highlight data for the filled fields of a page.
func (h *Handlers) Overlay(c *gin.Context) {
	doc, _, err := readPage(c)
	if err != nil {
		h.respondError(c, err, true)
		return
	}
	fields, err := h.scraper.Scanner().Scan(doc, scraper.ModeExtract)
	if err != nil {
		h.respondError(c, err, false)
		return
	}
	highlights := h.scraper.Highlighter().Highlights(doc, fields)
	c.JSON(http.StatusOK, gin.H{"highlights": highlights, "count": len(highlights)})
}

// Copy captures a page into the clipboard.
func (h *Handlers) Copy(c *gin.Context) {
	doc, req, err := readPage(c)
	if err != nil {
		h.respondError(c, err, true)
		return
	}

	ctx, span, end := h.trace(c, "clipboard.copy")
	snap, err := h.clipboard.Copy(ctx, doc, req.URL)
	if err == nil {
		span.SetTag("snapshot_id", snap.ID)
		span.SetCount("fields", snap.Metadata.FieldCount)
	}
	end(err)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	h.logger.Info("Copied page",
		zap.String("snapshot_id", snap.ID),
		zap.String("source_url", snap.SourceURL),
		zap.Int("entities", len(snap.Entities)),
		zap.Int("fields", snap.Metadata.FieldCount))
	c.JSON(http.StatusCreated, snap)
}

// Current returns the clipboard snapshot.
func (h *Handlers) Current(c *gin.Context) {
	snap, err := h.clipboard.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Clear empties the clipboard. Saved records are kept.
func (h *Handlers) Clear(c *gin.Context) {
	if err := h.clipboard.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// Fill pastes a snapshot into a page and returns the filled markup. A
// partially filled page is still a 200; the outcome lists what failed.
func (h *Handlers) Fill(c *gin.Context) {
	var req fillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, err, true)
		return
	}
	doc, err := parseMarkup(req.HTML)
	if err != nil {
		h.respondError(c, err, true)
		return
	}

	if req.Plan {
		ctx, span, end := h.trace(c, "clipboard.plan")
		mappings, err := h.clipboard.Plan(ctx, doc, req.Snapshot)
		span.SetCount("mappings", len(mappings))
		end(err)
		if err != nil {
			h.respondError(c, err, false)
			return
		}
		if mappings == nil {
			mappings = []types.FieldMapping{}
		}
		c.JSON(http.StatusOK, gin.H{"mappings": mappings, "count": len(mappings)})
		return
	}

	ctx, span, end := h.trace(c, "clipboard.paste")
	outcome, err := h.clipboard.Paste(ctx, doc, req.Snapshot)
	if err == nil {
		span.SetCount("filled", outcome.FilledFields)
		span.SetCount("total", outcome.TotalFields)
	}
	end(err)
	if err != nil {
		h.respondError(c, err, false)
		return
	}

	filled, err := doc.HTML()
	if err != nil {
		h.respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "html": filled})
}

// History lists the records saved under an identifier, newest first.
func (h *Handlers) History(c *gin.Context) {
	records, err := h.clipboard.History(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		h.respondError(c, err, false)
		return
	}
	if records == nil {
		records = []types.SavedRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// Save stores a snapshot under an identifier. An empty body saves the
// current clipboard.
func (h *Handlers) Save(c *gin.Context) {
	var req saveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondError(c, err, true)
			return
		}
	}
	record, err := h.clipboard.Save(c.Request.Context(), c.Param("identifier"), req.Snapshot)
	if err != nil {
		h.respondError(c, err, false)
		return
	}
	c.JSON(http.StatusCreated, record)
}
