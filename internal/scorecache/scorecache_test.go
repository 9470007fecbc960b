package scorecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"reelpick/internal/quality"
	"reelpick/internal/score"
)

func mustOpen(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "scores.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := mustOpen(t)

	rec, err := store.Get(context.Background(), "/photos/a.jpg", "00000000000000ff")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected miss, got %+v", rec)
	}
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	want := Record{
		Path:        "/photos/a.jpg",
		Fingerprint: "00ff00ff00ff00ff",
		Score:       0.85,
		Analysis: &score.Analysis{
			Caption: "a sunlit harbor",
			Tags:    []string{"harbor", "boats"},
			Score:   0.85,
		},
		Quality: &quality.Metrics{Brightness: 120, Resolution: 1920 * 1080},
	}
	if err := store.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, want.Path, want.Fingerprint)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected hit")
	}
	if got.Score != want.Score {
		t.Fatalf("score = %v, want %v", got.Score, want.Score)
	}
	if got.Analysis == nil || got.Analysis.Caption != "a sunlit harbor" {
		t.Fatalf("analysis = %+v", got.Analysis)
	}
	if got.Quality == nil || got.Quality.Resolution != 1920*1080 {
		t.Fatalf("quality = %+v", got.Quality)
	}
	if got.ProcessedAt.IsZero() {
		t.Fatal("expected processed timestamp")
	}
}

func TestGetFingerprintMismatchIsMiss(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	rec := Record{Path: "/photos/a.jpg", Fingerprint: "aaaa", Score: 0.5}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, rec.Path, "bbbb")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss for changed fingerprint, got %+v", got)
	}
}

func TestUpsertReplacesByPath(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	first := Record{Path: "/photos/a.jpg", Fingerprint: "aaaa", Score: 0.4}
	second := Record{Path: "/photos/a.jpg", Fingerprint: "cccc", Score: 0.9}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}

	if got, _ := store.Get(ctx, first.Path, "aaaa"); got != nil {
		t.Fatalf("stale fingerprint still resolves: %+v", got)
	}
	got, err := store.Get(ctx, second.Path, "cccc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Score != 0.9 {
		t.Fatalf("got %+v, want replacement with score 0.9", got)
	}
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.sqlite")

	store, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), "/photos/a.jpg", "aaaa")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected miss, got %+v", rec)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("read-only open must not create the store")
	}
	if err := store.Upsert(context.Background(), Record{Path: "/x"}); err == nil {
		t.Fatal("expected write rejection on read-only store")
	}
}

func TestOpenReadOnlyExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.sqlite")
	writer, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := Record{Path: "/photos/a.jpg", Fingerprint: "aaaa", Score: 0.7}
	if err := writer.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer reader.Close()

	got, err := reader.Get(context.Background(), rec.Path, rec.Fingerprint)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Score != 0.7 {
		t.Fatalf("got %+v, want cached score 0.7", got)
	}
	if err := reader.Upsert(context.Background(), rec); err == nil {
		t.Fatal("expected write rejection on read-only store")
	}
}
