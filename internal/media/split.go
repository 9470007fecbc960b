package media

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Segment is one split clip with its position in the source timeline.
type Segment struct {
	Path     string
	Index    int
	Start    float64
	Duration float64
}

// Split cuts the source into fixed-duration segments under destDir using
// the ffmpeg segment muxer, then probes each piece and drops any shorter
// than minClipSeconds (the tail segment is usually short). Segments come
// back ordered by index with cumulative start offsets.
func (t *Tool) Split(ctx context.Context, source, destDir string, minClipSeconds, maxClipSeconds float64) ([]Segment, error) {
	if maxClipSeconds <= 0 {
		return nil, fmt.Errorf("split %s: segment length must be positive", source)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("split %s: create destination: %w", source, err)
	}

	pattern := filepath.Join(destDir, "clip_%04d.mp4")
	args := []string{
		"-i", source,
		"-f", "segment",
		"-segment_time", formatSeconds(maxClipSeconds),
		"-reset_timestamps", "1",
		"-c", "copy",
		pattern,
	}
	if err := t.runFFmpeg(ctx, args); err != nil {
		return nil, fmt.Errorf("split %s: %w", source, err)
	}

	paths, err := collectSegments(destDir)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", source, err)
	}

	var segments []Segment
	var offset float64
	for _, path := range paths {
		probe, probeErr := t.Probe(ctx, path)
		if probeErr != nil {
			return nil, probeErr
		}
		if probe.Duration < minClipSeconds {
			// Short tail pieces are not worth judging.
			_ = os.Remove(path)
			offset += probe.Duration
			continue
		}
		segments = append(segments, Segment{
			Path:     path,
			Index:    len(segments),
			Start:    offset,
			Duration: probe.Duration,
		})
		offset += probe.Duration
	}
	return segments, nil
}

func collectSegments(dir string) ([]string, error) {
	var paths []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "clip_") && strings.HasSuffix(entry.Name(), ".mp4") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fs.ErrNotExist
	}
	return paths, nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
