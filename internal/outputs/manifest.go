package outputs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reelpick/internal/quality"
	"reelpick/internal/score"
	"reelpick/internal/selection"
)

// PhotoRecord is one photo's outcome in the batch manifest.
type PhotoRecord struct {
	Path        string           `json:"path"`
	Width       int              `json:"width,omitempty"`
	Height      int              `json:"height,omitempty"`
	Orientation string           `json:"orientation,omitempty"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	Score       *float64         `json:"score,omitempty"`
	Quality     *quality.Metrics `json:"quality,omitempty"`
	Analysis    *score.Analysis  `json:"analysis,omitempty"`
	Selected    bool             `json:"selected"`
	Destination string           `json:"destination,omitempty"`
	FromCache   bool             `json:"from_cache,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// PhotoManifest is the externally visible record of one photo batch.
type PhotoManifest struct {
	BatchID           string    `json:"batch_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	InputDir          string    `json:"input_dir"`
	OutputDir         string    `json:"output_dir"`
	TargetCount       int       `json:"target_count"`
	TotalItems        int       `json:"total_items"`
	SelectedCount     int       `json:"selected_count"`
	RemovedDuplicates int       `json:"removed_duplicates"`
	ErrorCount        int       `json:"error_count"`

	Items []PhotoRecord `json:"items"`
}

// SelectedClip is one accepted clip within a source result.
type SelectedClip struct {
	Path        string  `json:"path"`
	Index       int     `json:"index"`
	Duration    float64 `json:"duration_seconds"`
	Score       float64 `json:"score"`
	Fingerprint string  `json:"fingerprint,omitempty"`
	HasSpeech   *bool   `json:"has_speech,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// ClipRecord is one scored clip's outcome, selected or not.
type ClipRecord struct {
	Path        string           `json:"path"`
	Index       int              `json:"index"`
	Duration    float64          `json:"duration_seconds"`
	Width       int              `json:"width,omitempty"`
	Height      int              `json:"height,omitempty"`
	Orientation string           `json:"orientation,omitempty"`
	Score       *float64         `json:"score,omitempty"`
	Quality     *quality.Metrics `json:"quality,omitempty"`
	Analysis    *score.Analysis  `json:"analysis,omitempty"`
	Selected    bool             `json:"selected"`
	FromCache   bool             `json:"from_cache,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// SourceResult aggregates one source video's selection outcome.
type SourceResult struct {
	Source               string               `json:"source"`
	DigestPath           string               `json:"digest_path,omitempty"`
	TotalClips           int                  `json:"total_clips"`
	ScoredClips          int                  `json:"scored_clips"`
	SelectedClips        []SelectedClip       `json:"selected_clips"`
	RemovedDuplicates    int                  `json:"removed_duplicates"`
	TotalSelectedSeconds float64              `json:"total_selected_seconds"`
	ScoreStats           selection.ScoreStats `json:"score_stats"`
	Clips                []ClipRecord         `json:"clips"`
	Error                string               `json:"error,omitempty"`
}

// VideoManifest is the externally visible record of one video batch.
type VideoManifest struct {
	BatchID     string    `json:"batch_id"`
	GeneratedAt time.Time `json:"generated_at"`
	OutputDir   string    `json:"output_dir"`

	Sources []SourceResult `json:"sources"`
}

// WriteManifest renders doc as indented JSON at path, creating parent
// directories when needed.
func WriteManifest(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure manifest directory: %w", err)
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadPhotoManifest reads a photo manifest back from disk.
func LoadPhotoManifest(path string) (*PhotoManifest, error) {
	var doc PhotoManifest
	if err := loadManifest(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadVideoManifest reads a video manifest back from disk.
func LoadVideoManifest(path string) (*VideoManifest, error) {
	var doc VideoManifest
	if err := loadManifest(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func loadManifest(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return nil
}
