package sandbox

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/dom"
)

// ScriptListener runs on<event> attributes found on the event path.
type ScriptListener struct {
	pool   *Pool
	logger *zap.Logger
}

// NewScriptListener creates a listener backed by pool.
func NewScriptListener(pool *Pool, logger *zap.Logger) *ScriptListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptListener{pool: pool, logger: logger}
}

// HandleEvent implements dom.Listener.
func (l *ScriptListener) HandleEvent(ctx context.Context, doc *dom.Document, ev dom.Event) error {
	handler, ok := dom.Attr(ev.Current, "on"+string(ev.Type))
	if !ok || strings.TrimSpace(handler) == "" {
		return nil
	}

	res, err := l.pool.Run(ctx, handler, Binding{Doc: doc, This: ev.Current, Event: ev})
	if err != nil {
		l.logger.Debug("Inline handler failed",
			zap.String("event", string(ev.Type)),
			zap.String("element", dom.Tag(ev.Current)),
			zap.Error(err))
		return fmt.Errorf("on%s handler on <%s>: %w", ev.Type, dom.Tag(ev.Current), err)
	}

	for _, entry := range res.Console {
		l.logger.Debug("Page console",
			zap.String("level", entry.Level),
			zap.String("message", entry.Message))
	}
	return nil
}
