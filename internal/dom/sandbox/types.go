package sandbox

import (
	"time"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"golang.org/x/net/html"
)

// Config defines sandbox configuration
type Config struct {
	Timeout       time.Duration // per handler
	MaxCallStack  int
	MaxTimers     int // setTimeout callbacks run per handler
	EnableConsole bool
}

// DefaultConfig returns the settings used by the fill executor.
func DefaultConfig() Config {
	return Config{
		Timeout:       time.Second,
		MaxCallStack:  1024,
		MaxTimers:     32,
		EnableConsole: true,
	}
}

// Binding is what a handler runs against.
type Binding struct {
	Doc   *dom.Document
	This  *html.Node
	Event dom.Event
}

// Result holds execution result
type Result struct {
	Value    interface{}
	Console  []LogEntry
	Duration time.Duration
}

// LogEntry is one console call made by a handler.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}
