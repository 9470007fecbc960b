package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpick/internal/testsupport"
)

func TestPhotosCommandEndToEnd(t *testing.T) {
	judge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		content := `{"caption":"test","tags":["t"],"risks":{},"score":0.9}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"content": content},
		})
	}))
	defer judge.Close()

	inputDir := t.TempDir()
	outputDir := t.TempDir()
	// Uniform images share a fingerprint, so dedupe collapses them to one.
	testsupport.WritePNG(t, filepath.Join(inputDir, "a.png"), testsupport.FillImage(64, 64, 128))
	testsupport.WritePNG(t, filepath.Join(inputDir, "b.png"), testsupport.FillImage(64, 64, 200))

	configPath := writeTestConfig(t, judge.URL)

	out, _, err := runCLI(t, []string{"photos", inputDir, outputDir, "--count", "2"}, configPath)
	if err != nil {
		t.Fatalf("photos: %v", err)
	}
	if !strings.Contains(out, `"selected_count": 1`) {
		t.Fatalf("expected one selected photo after dedupe: %q", out)
	}
	if !strings.Contains(out, `"removed_duplicates": 1`) {
		t.Fatalf("expected one removed duplicate: %q", out)
	}

	selected, err := os.ReadDir(filepath.Join(outputDir, "selected"))
	if err != nil {
		t.Fatalf("read selected dir: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected 1 copied photo, got %d", len(selected))
	}
	if !strings.HasPrefix(selected[0].Name(), "0001_") {
		t.Fatalf("expected rank prefix on %q", selected[0].Name())
	}

	if _, err := os.Stat(filepath.Join(outputDir, "manifest.photos.json")); err != nil {
		t.Fatalf("expected manifest: %v", err)
	}
	for _, sidecar := range []string{"a.json", "b.json"} {
		if _, err := os.Stat(filepath.Join(outputDir, "scores", sidecar)); err != nil {
			t.Fatalf("expected score sidecar %s: %v", sidecar, err)
		}
	}
}
