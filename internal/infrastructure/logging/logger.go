package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
)

// Logger is the process-wide root logger. Components get named children
// through Component so log lines can be filtered by stage.
type Logger struct {
	*zap.Logger
}

// Config selects level, encoding and destination.
type Config struct {
	Level       string // debug, info, warn or error
	Development bool   // console encoding with colour and stack traces
	Output      string // zap sink path; stderr when empty
}

// New builds a logger. Output defaults to stderr so the CLI can keep
// stdout for JSON results.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	output := cfg.Output
	if output == "" {
		output = "stderr"
	}

	zc := zap.NewProductionConfig()
	zc.Encoding = "json"
	zc.EncoderConfig = jsonEncoder()
	zc.DisableStacktrace = true
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig = consoleEncoder()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}
	// no sampling
	zc.Sampling = nil

	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{Logger: z.With(zap.String("service", "formclip"))}, nil
}

// FromConfig builds the logger described by the environment settings.
func FromConfig(cfg config.LogConfig) (*Logger, error) {
	return New(Config{Level: cfg.Level, Development: cfg.Development})
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Component returns a child logger named after a stage such as "scanner"
// or "filler". A nil Logger yields a no-op child.
func (l *Logger) Component(name string) *zap.Logger {
	if l == nil || l.Logger == nil {
		return zap.NewNop()
	}
	return l.Named(name)
}

// ParseLevel maps a level name such as "warn" or "WARN" to a zap level. The
// empty string means info.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

func jsonEncoder() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return ec
}

func consoleEncoder() zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	return ec
}
