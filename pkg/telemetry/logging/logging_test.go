package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"sluice-hq/sluice/pkg/config"
)

// ============================================================================
// Setup
// ============================================================================

func TestSetup_JSONOutput(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("bucket created", "profile", "standard", "capacity", 1000)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, buf.String())
	}
	if entry["msg"] != "bucket created" {
		t.Errorf("msg = %v, want %q", entry["msg"], "bucket created")
	}
	if entry["profile"] != "standard" {
		t.Errorf("profile = %v, want %q", entry["profile"], "standard")
	}
}

func TestSetup_TextOutput(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("sweep complete", "removed", 3)

	if !strings.Contains(buf.String(), "msg=\"sweep complete\"") {
		t.Errorf("output = %q, want text format", buf.String())
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info line emitted below warn level: %s", buf.String())
	}

	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Error("warn line not emitted at warn level")
	}
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	if _, err := Setup(config.LoggingConfig{Level: "debug", Format: "json"}, &buf); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	slog.Debug("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not installed; output = %q", buf.String())
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	if _, err := Setup(config.LoggingConfig{Level: "loud", Format: "json"}, nil); err == nil {
		t.Error("Setup() expected error for bad level, got nil")
	}
	if _, err := Setup(config.LoggingConfig{Level: "info", Format: "xml"}, nil); err == nil {
		t.Error("Setup() expected error for bad format, got nil")
	}
}

// ============================================================================
// Parsing
// ============================================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Context helpers
// ============================================================================

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID(empty ctx) = %q, want \"\"", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithClientKey(ctx, "client-a")

	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}
	if got := GetClientKey(ctx); got != "client-a" {
		t.Errorf("GetClientKey() = %q, want %q", got, "client-a")
	}
}
