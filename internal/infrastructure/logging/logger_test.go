package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"", zapcore.InfoLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestComponentOnNilLogger(t *testing.T) {
	var l *Logger
	assert.NotNil(t, l.Component("scanner"))
	assert.NotNil(t, NewNop().Component("filler"))
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		debug     bool
		wantError bool
	}{
		{name: "production info", cfg: config.LogConfig{Level: "info"}},
		{name: "development debug", cfg: config.LogConfig{Level: "debug", Development: true}, debug: true},
		{name: "bad level", cfg: config.LogConfig{Level: "chatty"}, wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := FromConfig(tt.cfg)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formclip.log")
	l, err := New(Config{Level: "info", Output: path})
	require.NoError(t, err)
	l.Component("clipboard").Info("Snapshot copied")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Snapshot copied"`)
	assert.Contains(t, string(data), `"logger":"clipboard"`)
	assert.Contains(t, string(data), `"service":"formclip"`)
}
