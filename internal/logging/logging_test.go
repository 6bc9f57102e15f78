package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level        string
		debugEnabled bool
		infoEnabled  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"error", false, false},
		{"", false, true}, // defaults to info
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			logger := New(tt.level, "text")
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debugEnabled {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugEnabled)
			}
			if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.infoEnabled {
				t.Errorf("info enabled = %v, want %v", got, tt.infoEnabled)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	if New("info", "json") == nil {
		t.Fatal("expected non-nil logger for JSON format")
	}
}

func TestRequestIDPlumbing(t *testing.T) {
	ctx := context.Background()

	if id := RequestID(ctx); id != "" {
		t.Errorf("expected empty request ID, got %q", id)
	}

	ctx = WithRequestID(ctx, "req-123")
	if id := RequestID(ctx); id != "req-123" {
		t.Errorf("expected req-123, got %q", id)
	}
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()

	// Default logger when none set
	if FromContext(ctx) == nil {
		t.Fatal("expected default logger")
	}

	custom := New("debug", "text")
	ctx = WithLogger(ctx, custom)
	if FromContext(ctx) != custom {
		t.Error("expected custom logger from context")
	}

	// L attaches the request ID when present
	ctx = WithRequestID(ctx, "req-456")
	if L(ctx) == nil {
		t.Fatal("expected logger with request id")
	}
}
