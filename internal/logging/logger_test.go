package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"showsync/internal/config"
	"showsync/internal/logging"
	"showsync/internal/services"
)

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "organizer").Info("episode moved", logging.String("file", "Show S01.E01.mkv"), logging.Episode(1))

	line := buf.String()
	if !strings.Contains(line, "INFO organizer: episode moved") {
		t.Fatalf("unexpected header in %q", line)
	}
	if !strings.Contains(line, `file="Show S01.E01.mkv"`) {
		t.Fatalf("expected quoted value in %q", line)
	}
	if !strings.Contains(line, "episode=1") {
		t.Fatalf("expected int field in %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no color codes for non-terminal writer, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller in debug output, got %q", buf.String())
	}
}

func TestJSONLoggerWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "showsync.log")
	var buf bytes.Buffer

	logger, err := logging.New(logging.Options{
		Level:  "info",
		Format: "json",
		Writer: &buf,
		File:   &logging.FileOptions{Path: logPath, MaxSizeMB: 1, MaxBackups: 3, MaxAgeDays: 3},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("pass complete", logging.Int("moved", 2))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "pass complete" || entry["level"] != "info" {
		t.Fatalf("unexpected json entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key: %v", entry)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "pass complete") {
		t.Fatalf("expected file to contain message, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWithFile(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	logger, err := logging.NewFromConfig(&cfg, true)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("file sink check")
	if _, err := os.Stat(filepath.Join(cfg.LogDir(), "showsync.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "1a2b3c4d-5e6f-7081-92a3-b4c5d6e7f809")
	ctx = services.WithShow(ctx, "Dark (2017)")
	ctx = services.WithTask(ctx, "/incoming")

	logging.WithContext(ctx, logging.NewComponentLogger(base, "organizer")).Info("hello")
	line := buf.String()
	if !strings.Contains(line, "INFO organizer [Dark (2017)] #1a2b3c4d: hello") {
		t.Fatalf("expected promoted header in %q", line)
	}
	if strings.Contains(line, "run_id=") || strings.Contains(line, "show=") {
		t.Fatalf("header fields should not repeat in the tail: %q", line)
	}
	if !strings.Contains(line, "task=/incoming") {
		t.Fatalf("expected task field in %q", line)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(base, "show skipped", "show_lookup_failed", logging.String(logging.FieldImpact, "show not synced"))
	line := buf.String()
	if !strings.Contains(line, "event_type=show_lookup_failed") {
		t.Fatalf("expected event type in %q", line)
	}
	if !strings.Contains(line, "error_hint=") {
		t.Fatalf("expected default hint in %q", line)
	}
	if strings.Count(line, "impact=") != 1 {
		t.Fatalf("expected caller impact to win, got %q", line)
	}
}
