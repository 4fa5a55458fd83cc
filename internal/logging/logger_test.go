package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captioner/internal/config"
	"captioner/internal/logging"
	"captioner/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "debug message") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPromotesComponentAndSession(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithSessionID(context.Background(), "3f1c2a9e-0000-4000-8000-000000000000")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "live"))
	logger.Info("final recorded", logging.Args(logging.Int("chars", 12))...)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO [3f1c2a9e] live: final recorded chars=12") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.Args(logging.String("k", "v"))...)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	for _, key := range []string{"ts", "level", "msg", "k"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected key %q in %v", key, entry)
		}
	}
	if entry["level"] != "info" {
		t.Fatalf("unexpected level %v", entry["level"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug disabled")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info enabled")
	}
}

type recordingHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	*h.records = append(*h.records, r)
	return nil
}

func (h recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return recordingHandler{records: h.records, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h recordingHandler) WithGroup(string) slog.Handler { return h }

func recordAttrs(r slog.Record) map[string]string {
	out := map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "session-1")
	ctx = services.WithStage(ctx, "burn")
	ctx = services.WithRequestID(ctx, "req-xyz")

	var records []slog.Record
	logger := slog.New(recordingHandler{records: &records})
	logging.WithContext(ctx, logger).Info("contextual log")

	if len(records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(records))
	}
	attrs := recordAttrs(records[0])
	want := map[string]string{
		logging.FieldSessionID:     "session-1",
		logging.FieldStage:         "burn",
		logging.FieldCorrelationID: "req-xyz",
	}
	for key, value := range want {
		if attrs[key] != value {
			t.Fatalf("field %s = %q, want %q", key, attrs[key], value)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var records []slog.Record
	logger := slog.New(recordingHandler{records: &records})
	logging.WarnWithContext(logger, "stop timed out", "live_stop_timeout",
		logging.String(logging.FieldImpact, "worker still draining"),
		logging.Error(errors.New("deadline")),
	)

	if len(records) != 1 || records[0].Level != slog.LevelWarn {
		t.Fatalf("expected one warning, got %+v", records)
	}
	attrs := recordAttrs(records[0])
	if attrs[logging.FieldEventType] != "live_stop_timeout" {
		t.Fatalf("unexpected event type %q", attrs[logging.FieldEventType])
	}
	if attrs[logging.FieldErrorHint] == "" {
		t.Fatal("expected default error hint")
	}
	if attrs[logging.FieldImpact] != "worker still draining" {
		t.Fatalf("caller impact should win, got %q", attrs[logging.FieldImpact])
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
	logging.NewComponentLogger(nil, "x").Info("ignored")
}
