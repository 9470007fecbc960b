package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"reelpick/internal/media"
	"reelpick/internal/score"
)

// Judge is the scoring collaborator; the production implementation lives in
// internal/judge.
type Judge interface {
	Judge(ctx context.Context, prompt, imageBase64 string) (*score.Analysis, error)
}

// MediaTool is the transcoding collaborator; the production implementation
// wraps ffmpeg in internal/media.
type MediaTool interface {
	Probe(ctx context.Context, path string) (*media.ProbeResult, error)
	Split(ctx context.Context, source, destDir string, minClipSeconds, maxClipSeconds float64) ([]media.Segment, error)
	ExtractFrame(ctx context.Context, clipPath string, duration float64, destPath string) error
	ExtractAudio(ctx context.Context, clipPath, destPath string) error
	Concat(ctx context.Context, listPath, destPath string) error
}

// lockOutputDir takes an advisory lock on the output directory so two runs
// cannot race on the same cache and working tree. The caller must invoke the
// returned release function.
func lockOutputDir(outputDir string) (func(), error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(outputDir, ".reelpick.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output directory %s is in use by another run", outputDir)
	}
	return func() { _ = lock.Unlock() }, nil
}
