package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewTo(&buf, "info", "json")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("story saved", zap.String("id", "s1"))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line below debug, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}
	if entry["message"] != "story saved" || entry["level"] != "info" || entry["id"] != "s1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewTo_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewTo(&buf, "DEBUG", "console")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("gate released")
	_ = logger.Sync()
	if !strings.Contains(buf.String(), "gate released") {
		t.Fatalf("expected debug message, got %q", buf.String())
	}
}

func TestNewTo_Invalid(t *testing.T) {
	if _, err := NewTo(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := NewTo(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}
