package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ExtractFrame writes a single representative frame from the clip's
// midpoint as a JPEG at destPath.
func (t *Tool) ExtractFrame(ctx context.Context, clipPath string, duration float64, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("extract frame: create destination: %w", err)
	}
	midpoint := duration / 2
	args := []string{
		"-ss", formatSeconds(midpoint),
		"-i", clipPath,
		"-frames:v", "1",
		"-q:v", "2",
		destPath,
	}
	if t.useHWAcc {
		args = append([]string{"-hwaccel", "auto"}, args...)
	}
	if err := t.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("extract frame from %s: %w", clipPath, err)
	}
	return nil
}

// ExtractAudio writes the clip's audio track as mono 16kHz PCM WAV, the
// shape the speech detector expects. Clips without an audio stream fail
// here; the caller treats that as "no speech signal", not a batch error.
func (t *Tool) ExtractAudio(ctx context.Context, clipPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("extract audio: create destination: %w", err)
	}
	args := []string{
		"-i", clipPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		destPath,
	}
	if err := t.runFFmpeg(ctx, args); err != nil {
		return fmt.Errorf("extract audio from %s: %w", clipPath, err)
	}
	return nil
}
