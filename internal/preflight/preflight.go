package preflight

import (
	"context"

	"reelpick/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunAll executes every preflight check for a run writing into outputDir.
func RunAll(ctx context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("FFmpeg", "ffmpeg"),
		CheckBinary("FFprobe", "ffprobe"),
		CheckJudge(ctx, cfg.Judge),
	}
	if outputDir != "" {
		results = append(results,
			CheckDirectoryAccess("Output directory", outputDir),
			CheckFreeSpace("Output volume", outputDir),
		)
	}
	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
