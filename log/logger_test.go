package log_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/mediarepo/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.LogLevel{
		"debug": log.Debug,
		"INFO":  log.Info,
		" Warn": log.Warn,
		"error": log.Error,
	}

	for input, want := range cases {
		got, err := log.ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q): expected %s, got %s", input, want, got)
		}
	}

	if _, err := log.ParseLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

// TestLogger_LevelAndNamed verifies filtering and the name chain of children.
func TestLogger_LevelAndNamed(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter("mediarepo", log.Info, &buf)

	logger.Debug("hidden %d", 1)
	logger.Named("cursor").Info("pulled %d items", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug line should be filtered, got %q", out)
	}
	if !strings.Contains(out, "[mediarepo/cursor] pulled 3 items") {
		t.Errorf("Expected named child line, got %q", out)
	}
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediarepo.log")
	logger := log.New("cli", log.Options{Level: log.Debug, File: path, NoTerminal: true, JSON: true})
	defer logger.Close()

	logger.Warn("disk %s", "full")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read log failed: %v", err)
	}

	var entry map[string]string
	if err := json.Unmarshal(bytes.TrimSpace(raw), &entry); err != nil {
		t.Fatalf("Expected JSON line, got %q: %v", raw, err)
	}
	if entry["level"] != "WARN" || entry["message"] != "disk full" || entry["component"] != "cli" {
		t.Errorf("Unexpected entry %v", entry)
	}
}
