package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"captioner/internal/logging"
)

func TestFileStoreOverwritesTrimmedText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "subtitles.txt")
	store, err := OpenFile(path, logging.NewNop())
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, text := range []string{"Hello. ", "Hello. World. ", "  Hello. World. Done. "} {
		if err := store.Save(ctx, text); err != nil {
			t.Fatalf("Save(%q) returned error: %v", text, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if got, want := string(data), "Hello. World. Done.\n"; got != want {
		t.Fatalf("transcript = %q, want %q", got, want)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileStoreWritesUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hindi.txt")
	store, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	defer store.Close()
	if err := store.Save(context.Background(), "मैं ठीक हूँ।"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "मैं ठीक हूँ।\n" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestFileStoreLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtitles.txt")
	first, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	if _, err := OpenFile(path, nil); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	second, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("expected lock to be reusable after close: %v", err)
	}
	second.Close()
}

func TestFileStoreReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtitles.txt")
	if err := os.WriteFile(path, []byte("stale\n"), 0o644); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}
	store, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	defer store.Close()
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected transcript removed, stat err = %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset on missing file returned error: %v", err)
	}
}

func TestFileStoreRejectsSaveAfterClose(t *testing.T) {
	store, err := OpenFile(filepath.Join(t.TempDir(), "t.txt"), nil)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	store.Close()
	if err := store.Save(context.Background(), "x"); err == nil {
		t.Fatal("expected error after close")
	}
}
