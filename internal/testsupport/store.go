package testsupport

import (
	"testing"

	"captioner/internal/config"
	"captioner/internal/journal"
)

// MustOpenJournal opens the session journal for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
