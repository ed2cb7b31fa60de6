package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfigWritesToStderr(t *testing.T) {
	tests := []struct {
		name     string
		json     bool
		debug    bool
		encoding string
		level    zapcore.Level
	}{
		{name: "console info", encoding: "console", level: zapcore.InfoLevel},
		{name: "json debug", json: true, debug: true, encoding: "json", level: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config(tt.json, tt.debug)

			if cfg.Encoding != tt.encoding {
				t.Fatalf("expected %s encoding, got %s", tt.encoding, cfg.Encoding)
			}

			if cfg.Level.Level() != tt.level {
				t.Fatalf("expected %s level, got %s", tt.level, cfg.Level.Level())
			}

			for _, path := range cfg.OutputPaths {
				if path == "stdout" {
					t.Fatal("logger must not write to stdout")
				}
			}

			if cfg.EncoderConfig.MessageKey != "step" {
				t.Fatalf("unexpected message key %q", cfg.EncoderConfig.MessageKey)
			}
		})
	}
}

func TestNew(t *testing.T) {
	log, err := New(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug must be disabled")
	}
}
