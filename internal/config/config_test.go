package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"reelpick/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Judge.BaseURL != "http://localhost:11434" {
		t.Fatalf("unexpected judge base url %q", cfg.Judge.BaseURL)
	}
	if !cfg.Photos.Dedupe {
		t.Fatal("photo dedupe should default on")
	}
	if cfg.Photos.HammingThreshold != 8 {
		t.Fatalf("unexpected photo hamming threshold %d", cfg.Photos.HammingThreshold)
	}
	if cfg.Video.DedupeScope != config.DedupeScopePerSource {
		t.Fatalf("unexpected dedupe scope %q", cfg.Video.DedupeScope)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[judge]
base_url = "http://judge.local:11434/"
model = "  llava:13b "

[video]
dedupe_scope = "GLOBAL"
target_digest_seconds = 60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Judge.BaseURL != "http://judge.local:11434" {
		t.Fatalf("base url not trimmed: %q", cfg.Judge.BaseURL)
	}
	if cfg.Judge.Model != "llava:13b" {
		t.Fatalf("model not trimmed: %q", cfg.Judge.Model)
	}
	if cfg.Video.DedupeScope != config.DedupeScopeGlobal {
		t.Fatalf("dedupe scope = %q", cfg.Video.DedupeScope)
	}
	if cfg.Video.TargetDigestSeconds != 60 {
		t.Fatalf("target digest seconds = %d", cfg.Video.TargetDigestSeconds)
	}
	// Untouched sections keep defaults.
	if cfg.Video.MinClipSeconds != 2 || cfg.Video.MaxClipSeconds != 6 {
		t.Fatalf("clip bounds = %d/%d", cfg.Video.MinClipSeconds, cfg.Video.MaxClipSeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Video.Preset != "youtube16x9" {
		t.Fatalf("preset = %q", cfg.Video.Preset)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero min clip", func(c *config.Config) { c.Video.MinClipSeconds = 0 }},
		{"max below min", func(c *config.Config) { c.Video.MaxClipSeconds = 1 }},
		{"bad preset", func(c *config.Config) { c.Video.Preset = "cinemascope" }},
		{"bad scope", func(c *config.Config) { c.Video.DedupeScope = "per_batch" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}
