package testsupport

import (
	"path/filepath"
	"testing"

	"reelpick/internal/scorecache"
)

// MustOpenCache opens a score cache in a test temp directory and registers
// cleanup.
func MustOpenCache(t testing.TB) *scorecache.Store {
	t.Helper()

	store, err := scorecache.Open(filepath.Join(t.TempDir(), "scores.sqlite"))
	if err != nil {
		t.Fatalf("scorecache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
