package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/abhisek/learnlens/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		cfg     config.LogConfig
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{config.LogConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{config.LogConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{config.LogConfig{Format: "json"}, zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		logger, err := New(tt.cfg)
		if err != nil {
			t.Fatalf("New(%+v): %v", tt.cfg, err)
		}
		core := logger.Core()
		if !core.Enabled(tt.enabled) {
			t.Errorf("New(%+v): level %v disabled", tt.cfg, tt.enabled)
		}
		if core.Enabled(tt.muted) {
			t.Errorf("New(%+v): level %v enabled", tt.cfg, tt.muted)
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
