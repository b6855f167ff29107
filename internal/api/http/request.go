package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/api/middleware"
	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/providers/clipboard"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/service"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// ErrNotMarkup means a request body sniffed as something other than text.
var ErrNotMarkup = errors.New("body is not HTML")

// pageRequest is the JSON form of a page upload.
type pageRequest struct {
	HTML string `json:"html" binding:"required"`
	URL  string `json:"url"`
	Mode string `json:"mode"`
}

// fillRequest carries a target page and an optional snapshot. Without a
// snapshot the current clipboard is pasted.
type fillRequest struct {
	HTML     string                   `json:"html" binding:"required"`
	Snapshot *types.ClipboardSnapshot `json:"snapshot"`
	// Plan returns the mappings without touching the page.
	Plan bool `json:"plan"`
}

type saveRequest struct {
	Snapshot *types.ClipboardSnapshot `json:"snapshot"`
}

// readPage parses the page in the request. A text/html body is read raw,
// with mode and url taken from the query and the X-Source-URL header;
// anything else must be a JSON pageRequest.
func readPage(c *gin.Context) (*dom.Document, pageRequest, error) {
	if c.ContentType() == "text/html" {
		req := pageRequest{
			URL:  c.GetHeader(middleware.HeaderSourceURL),
			Mode: c.Query("mode"),
		}
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, req, err
		}
		if err := checkMarkup(data); err != nil {
			return nil, req, err
		}
		doc, err := dom.Load(bytes.NewReader(data), c.GetHeader("Content-Type"))
		if err != nil {
			return nil, req, err
		}
		return doc.WithURL(req.URL), req, nil
	}

	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, req, err
	}
	doc, err := parseMarkup(req.HTML)
	if err != nil {
		return nil, req, err
	}
	return doc.WithURL(req.URL), req, nil
}

func parseMarkup(s string) (*dom.Document, error) {
	if err := checkMarkup([]byte(s)); err != nil {
		return nil, err
	}
	return dom.Parse(s)
}

// checkMarkup rejects binary uploads. Fragments such as a bare <form>
// sniff as text/plain rather than text/html, so any text type passes.
func checkMarkup(data []byte) error {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/html") || m.Is("text/plain") {
			return nil
		}
	}
	return ErrNotMarkup
}

// toolContext builds the caller context handed to providers.
func toolContext(c *gin.Context) *types.Context {
	return &types.Context{
		SourceURL: c.GetHeader(middleware.HeaderSourceURL),
		RequestID: middleware.GetRequestID(c),
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, dom.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotMarkup):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, clipboard.ErrEmpty), errors.Is(err, service.ErrServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, clipboard.ErrNoData), errors.Is(err, scraper.ErrNoControls):
		return http.StatusUnprocessableEntity
	case errors.Is(err, clipboard.ErrInvalidSnapshot),
		errors.Is(err, clipboard.ErrInvalidIdentifier),
		errors.Is(err, service.ErrInvalidToolID),
		errors.Is(err, dom.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Binding failures are
// always the caller's fault.
func (h *Handlers) respondError(c *gin.Context, err error, binding bool) {
	status := statusFor(err)
	if binding && status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
