package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteConcatList renders the ffmpeg concat demuxer list file for the
// ordered clip paths.
func WriteConcatList(listPath string, clipPaths []string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("concat list %s: no clips", listPath)
	}
	if err := os.MkdirAll(filepath.Dir(listPath), 0o755); err != nil {
		return fmt.Errorf("concat list: create directory: %w", err)
	}
	var builder strings.Builder
	for _, clip := range clipPaths {
		// Single quotes in paths are escaped per the concat demuxer rules.
		escaped := strings.ReplaceAll(clip, "'", `'\''`)
		fmt.Fprintf(&builder, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(listPath, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// Concat joins the clips named in listPath into one re-encoded output.
// Re-encoding keeps mixed-parameter segments compatible at the cost of a
// slower run.
func (t *Tool) Concat(ctx context.Context, listPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("concat: create destination: %w", err)
	}
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "20",
		"-c:a", "aac",
		"-movflags", "+faststart",
		destPath,
	}
	if t.useHWAcc {
		args = append([]string{"-hwaccel", "auto"}, args...)
	}
	if err := t.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("concat %s: %w", listPath, err)
	}
	return nil
}
