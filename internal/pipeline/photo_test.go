package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reelpick/internal/logging"
	"reelpick/internal/score"
	"reelpick/internal/testsupport"
)

type stubJudge struct {
	scores []float64
	calls  int
	err    error
}

func (s *stubJudge) Judge(_ context.Context, _, _ string) (*score.Analysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	value := 0.5
	if s.calls < len(s.scores) {
		value = s.scores[s.calls]
	}
	s.calls++
	return &score.Analysis{Caption: "stub", Tags: []string{}, Score: value}, nil
}

func writePhotoInputs(t *testing.T) (inputDir string) {
	t.Helper()
	inputDir = t.TempDir()
	// Checkerboards are sharp and mid-bright, so no quality flags trip;
	// different cell sizes yield distant fingerprints.
	testsupport.WritePNG(t, filepath.Join(inputDir, "a.png"), testsupport.CheckerImage(64, 64, 8))
	testsupport.WritePNG(t, filepath.Join(inputDir, "b.png"), testsupport.CheckerImage(64, 64, 4))
	return inputDir
}

func TestPhotoRunSelectsAndCopies(t *testing.T) {
	// Dedupe behavior is covered by the selection tests; these runs use
	// synthetic images whose fingerprints are not controlled.
	cfg := testsupport.NewConfig(t)
	cfg.Photos.Dedupe = false
	inputDir := writePhotoInputs(t)
	if err := os.WriteFile(filepath.Join(inputDir, "bad.jpg"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outputDir := t.TempDir()

	judgeStub := &stubJudge{scores: []float64{0.9, 0.7}}
	runner := NewPhotoRunner(cfg, judgeStub, logging.NewNop())

	manifest, err := runner.Run(context.Background(), PhotoRequest{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		TargetCount: 1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if manifest.TotalItems != 3 || manifest.SelectedCount != 1 || manifest.ErrorCount != 1 {
		t.Fatalf("manifest = %+v", manifest)
	}
	var selectedDest string
	for _, item := range manifest.Items {
		if item.Selected {
			if filepath.Base(item.Path) != "a.png" {
				t.Fatalf("selected %s, want a.png", item.Path)
			}
			// Judge 0.9 minus the small-resolution deduction.
			if item.Score == nil || *item.Score != 0.8 {
				t.Fatalf("score = %+v", item.Score)
			}
			if item.Width != 64 || item.Height != 64 || item.Orientation != "square" {
				t.Fatalf("image info = %dx%d %q", item.Width, item.Height, item.Orientation)
			}
			selectedDest = item.Destination
		}
	}
	if selectedDest == "" {
		t.Fatal("no selected item in manifest")
	}
	if _, statErr := os.Stat(selectedDest); statErr != nil {
		t.Fatalf("selected copy missing: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(outputDir, "manifest.photos.json")); statErr != nil {
		t.Fatalf("manifest file missing: %v", statErr)
	}
}

func TestPhotoRunResumesFromCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Photos.Dedupe = false
	inputDir := writePhotoInputs(t)
	outputDir := t.TempDir()

	first := &stubJudge{scores: []float64{0.9, 0.7}}
	runner := NewPhotoRunner(cfg, first, logging.NewNop())
	if _, err := runner.Run(context.Background(), PhotoRequest{
		InputDir: inputDir, OutputDir: outputDir, TargetCount: 2,
	}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.calls != 2 {
		t.Fatalf("first run judge calls = %d", first.calls)
	}

	// Second run: the judge is broken, the cache must carry the batch.
	second := &stubJudge{err: errors.New("judge down")}
	runner = NewPhotoRunner(cfg, second, logging.NewNop())
	manifest, err := runner.Run(context.Background(), PhotoRequest{
		InputDir: inputDir, OutputDir: outputDir, TargetCount: 2,
	})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("cache resume still called the judge %d times", second.calls)
	}
	if manifest.SelectedCount != 2 || manifest.ErrorCount != 0 {
		t.Fatalf("manifest = %+v", manifest)
	}
	for _, item := range manifest.Items {
		if !item.FromCache {
			t.Fatalf("item %s not served from cache", item.Path)
		}
	}
}

func TestPhotoRunRejectsZeroTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := NewPhotoRunner(cfg, &stubJudge{}, logging.NewNop())
	if _, err := runner.Run(context.Background(), PhotoRequest{
		InputDir: t.TempDir(), OutputDir: t.TempDir(),
	}); err == nil {
		t.Fatal("expected error for zero target count")
	}
}
