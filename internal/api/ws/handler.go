package ws

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/providers/clipboard"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Message types.
const (
	TypeCopy     = "copy"
	TypeFill     = "fill"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeSystem   = "system"
	TypeCopied   = "copied"
	TypePlan     = "plan"
	TypeField    = "field"
	TypeComplete = "complete"
	TypeError    = "error"
)

// fillTimeout bounds one fill, delegate calls included.
const fillTimeout = 2 * time.Minute

// Request is a client message.
type Request struct {
	Type      string                   `json:"type"`
	HTML      string                   `json:"html,omitempty"`
	SourceURL string                   `json:"source_url,omitempty"`
	Snapshot  *types.ClipboardSnapshot `json:"snapshot,omitempty"`
}

// Response is a server message. Only the fields relevant to Type are set.
type Response struct {
	Type      string                   `json:"type"`
	Message   string                   `json:"message,omitempty"`
	Total     int                      `json:"total,omitempty"`
	Index     int                      `json:"index"`
	Result    *types.FieldResult       `json:"result,omitempty"`
	Outcome   *types.FillOutcome       `json:"outcome,omitempty"`
	Snapshot  *types.ClipboardSnapshot `json:"snapshot,omitempty"`
	HTML      string                   `json:"html,omitempty"`
	Timestamp int64                    `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	clipboard *clipboard.Service
	upgrader  websocket.Upgrader
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewHandler creates a handler. Origins lists the pages allowed to
// connect; "*" or an empty list allows any.
func NewHandler(clip *clipboard.Service, origins []string, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")
	return &Handler{
		clipboard: clip,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(origins, origin)
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	reqCtx := c.Request.Context()

	h.send(conn, Response{Type: TypeSystem, Message: "Connected to formclip"})

	for {
		var msg Request
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("WebSocket read ended", zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case TypeCopy:
			h.handleCopy(reqCtx, conn, msg)
		case TypeFill:
			h.handleFill(reqCtx, conn, msg)
		case TypePing:
			h.send(conn, Response{Type: TypePong})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

func (h *Handler) handleCopy(reqCtx context.Context, conn *websocket.Conn, msg Request) {
	doc, err := dom.Parse(msg.HTML)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	snap, err := h.clipboard.Copy(reqCtx, doc, msg.SourceURL)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	h.send(conn, Response{Type: TypeCopied, Snapshot: snap, Total: snap.Metadata.FieldCount})
}

func (h *Handler) handleFill(reqCtx context.Context, conn *websocket.Conn, msg Request) {
	doc, err := dom.Parse(msg.HTML)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	// The hijacked request context is never cancelled on disconnect, so a
	// failed write is what stops the fill.
	ctx, cancel := context.WithTimeout(reqCtx, fillTimeout)
	defer cancel()

	mappings, err := h.clipboard.Plan(ctx, doc, msg.Snapshot)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	h.send(conn, Response{Type: TypePlan, Total: len(mappings)})

	outcome := h.clipboard.Apply(ctx, doc, mappings, streamFields(func(resp Response) error {
		return h.send(conn, resp)
	}, cancel))

	filled, err := doc.HTML()
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	h.send(conn, Response{Type: TypeComplete, Outcome: &outcome, HTML: filled})
}

// streamFields sends one field message per result. After the first failed
// write it cancels the fill and sends nothing more.
func streamFields(send func(Response) error, cancel context.CancelFunc) func(int, types.FieldResult) {
	broken := false
	return func(i int, r types.FieldResult) {
		if broken {
			return
		}
		if err := send(Response{Type: TypeField, Index: i, Result: &r}); err != nil {
			broken = true
			cancel()
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, resp Response) error {
	resp.Timestamp = time.Now().Unix()
	h.metrics.RecordWSMessage("out", resp.Type)
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Debug("WebSocket write failed", zap.String("type", resp.Type), zap.Error(err))
		return err
	}
	return nil
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, Response{Type: TypeError, Message: msg})
}
