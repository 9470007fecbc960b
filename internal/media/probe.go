package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".mkv": {}, ".avi": {}, ".m4v": {}, ".webm": {},
}

// CollectVideos walks root and returns every video file in sorted path
// order, so batch processing (and global dedupe) is deterministic.
func CollectVideos(root string) ([]string, error) {
	var videos []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := videoExtensions[ext]; ok {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect videos in %s: %w", root, err)
	}
	sort.Strings(videos)
	return videos, nil
}

// ProbeResult describes one source video.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads duration, dimensions, and frame rate from a source file.
func (t *Tool) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	stdout, err := t.runFFprobe(ctx, []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	})
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal([]byte(stdout), &parsed); err != nil {
		return nil, fmt.Errorf("probe %s: decode output: %w", path, err)
	}

	result := &ProbeResult{}
	if parsed.Format.Duration != "" {
		if duration, parseErr := strconv.ParseFloat(parsed.Format.Duration, 64); parseErr == nil {
			result.Duration = duration
		}
	}
	for _, stream := range parsed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		result.Width = stream.Width
		result.Height = stream.Height
		result.FPS = parseFPS(stream.RFrameRate)
		break
	}
	if result.Duration <= 0 {
		return nil, fmt.Errorf("probe %s: no duration reported", path)
	}
	return result, nil
}

// parseFPS evaluates ffprobe's rational frame rate ("30000/1001").
func parseFPS(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if num, den, found := strings.Cut(raw, "/"); found {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
