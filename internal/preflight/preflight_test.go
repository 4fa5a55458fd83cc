package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"captioner/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func recognizerServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestCheckRecognizer(t *testing.T) {
	url := recognizerServer(t)
	if result := CheckRecognizer(context.Background(), "english", url); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if result := CheckRecognizer(context.Background(), "hindi", ""); result.Passed {
		t.Fatal("expected failure for missing url")
	}
	if result := CheckRecognizer(context.Background(), "hindi", "ws://127.0.0.1:1"); result.Passed {
		t.Fatal("expected failure for closed port")
	}
}

func TestCheckOpenAIKey(t *testing.T) {
	if result := CheckOpenAIKey(config.Transcription{}); result.Passed {
		t.Fatal("expected failure without key")
	}
	result := CheckOpenAIKey(config.Transcription{OpenAIAPIKey: "sk", OpenAIBaseURL: "http://local/v1"})
	if !result.Passed || !strings.Contains(result.Detail, "http://local/v1") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckRedisUnreachable(t *testing.T) {
	result := CheckRedis(context.Background(), config.Redis{Addr: "127.0.0.1:1"})
	if result.Passed {
		t.Fatal("expected failure for closed port")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = base
	cfg.Paths.LogDir = base
	cfg.Paths.JournalPath = filepath.Join(base, "sessions.db")
	url := recognizerServer(t)
	cfg.Live.Models = map[string]string{"english": url, "hindi": url}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
	if results[3].Name != "Recognizer (english)" || results[4].Name != "Recognizer (hindi)" {
		t.Fatalf("recognizer checks out of order: %+v", results[3:])
	}
}

func TestRunAll_GatedChecks(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = base
	cfg.Paths.LogDir = base
	cfg.Paths.JournalPath = filepath.Join(base, "sessions.db")
	cfg.Live.Models = nil
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Transcription.Engine = config.EngineOpenAI

	results := RunAll(context.Background(), &cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "Redis") || !strings.Contains(joined, "OpenAI transcription") {
		t.Fatalf("expected gated checks, got %s", joined)
	}
}
