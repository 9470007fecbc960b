package config

import (
	"fmt"
	"strings"
)

// PresetClipsOnly copies the selected clips without concatenating a digest.
const PresetClipsOnly = "clips_only"

// DedupeScopePerSource keeps a fresh fingerprint set for every source video.
const DedupeScopePerSource = "per_source"

// DedupeScopeGlobal shares one fingerprint set across all sources in a batch.
const DedupeScopeGlobal = "global"

var validPresets = map[string]struct{}{
	"youtube16x9":   {},
	"shorts9x16":    {},
	PresetClipsOnly: {},
}

func (c *Config) normalize() {
	c.Judge.BaseURL = strings.TrimRight(strings.TrimSpace(c.Judge.BaseURL), "/")
	c.Judge.Model = strings.TrimSpace(c.Judge.Model)
	c.Video.Preset = strings.ToLower(strings.TrimSpace(c.Video.Preset))
	c.Video.DedupeScope = strings.ToLower(strings.TrimSpace(c.Video.DedupeScope))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Judge.BaseURL == "" {
		c.Judge.BaseURL = defaultJudgeBaseURL
	}
	if c.Judge.TimeoutSeconds <= 0 {
		c.Judge.TimeoutSeconds = defaultJudgeTimeoutSeconds
	}
	if c.Judge.MaxRetries < 0 {
		c.Judge.MaxRetries = 0
	}
	if c.Judge.RetryBackoffMS <= 0 {
		c.Judge.RetryBackoffMS = defaultJudgeBackoffMS
	}
	if c.Photos.HammingThreshold <= 0 {
		c.Photos.HammingThreshold = defaultPhotoHammingThreshold
	}
	if c.Video.Preset == "" {
		c.Video.Preset = defaultVideoPreset
	}
	if c.Video.DedupeScope == "" {
		c.Video.DedupeScope = DedupeScopePerSource
	}
	if c.Video.DedupeHammingThreshold <= 0 {
		c.Video.DedupeHammingThreshold = defaultVideoDedupeThreshold
	}
	if c.Video.MaxSelectedClips <= 0 {
		c.Video.MaxSelectedClips = defaultVideoMaxSelectedClips
	}
	if c.Video.TargetDigestSeconds <= 0 {
		c.Video.TargetDigestSeconds = defaultVideoTargetSeconds
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Validate reports configuration-level errors. These are the only errors that
// abort a batch before it starts; everything downstream is per-item.
func (c *Config) Validate() error {
	if c.Video.MinClipSeconds <= 0 {
		return fmt.Errorf("video.min_clip_seconds must be positive, got %d", c.Video.MinClipSeconds)
	}
	if c.Video.MaxClipSeconds < c.Video.MinClipSeconds {
		return fmt.Errorf(
			"video.max_clip_seconds (%d) must be >= video.min_clip_seconds (%d)",
			c.Video.MaxClipSeconds, c.Video.MinClipSeconds,
		)
	}
	if _, ok := validPresets[c.Video.Preset]; !ok {
		return fmt.Errorf("video.preset: unsupported value %q", c.Video.Preset)
	}
	switch c.Video.DedupeScope {
	case DedupeScopePerSource, DedupeScopeGlobal:
	default:
		return fmt.Errorf("video.dedupe_scope: unsupported value %q", c.Video.DedupeScope)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
