package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ZapLoggerConfig
		want zapcore.Level
	}{
		{"production json", &ZapLoggerConfig{Encoding: "json", Level: "info"}, zapcore.InfoLevel},
		{"development console", &ZapLoggerConfig{IsDevelopment: true, Encoding: "console", Level: "debug"}, zapcore.DebugLevel},
		{"bad level falls back to info", &ZapLoggerConfig{Level: "loud"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewZapLogger(tt.cfg)
			assert.NotNil(t, l)
			zl := l.With()
			assert.True(t, zl.Core().Enabled(tt.want))
		})
	}
}
