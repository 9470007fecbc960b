package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpick/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, judgeBaseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("[judge]\nbase_url = %q\nmodel = \"test-model\"\n", judgeBaseURL)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func stubBinaries(t *testing.T, names ...string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		script := filepath.Join(dir, name)
		if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestPreflightCommand(t *testing.T) {
	judge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer judge.Close()

	stubBinaries(t, "ffmpeg", "ffprobe")
	configPath := writeTestConfig(t, judge.URL)
	outputDir := t.TempDir()

	out, _, err := runCLI(t, []string{"preflight", outputDir}, configPath)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "Judge"} {
		if !strings.Contains(out, want) {
			t.Fatalf("preflight output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, `"passed": false`) {
		t.Fatalf("expected all checks to pass: %q", out)
	}
}

func TestPreflightCommandFailsWhenJudgeDown(t *testing.T) {
	judge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	judge.Close()

	stubBinaries(t, "ffmpeg", "ffprobe")
	configPath := writeTestConfig(t, judge.URL)

	out, _, err := runCLI(t, []string{"preflight", t.TempDir()}, configPath)
	if err == nil {
		t.Fatalf("expected preflight to fail, output: %q", out)
	}
}

func TestPlanPhotosCommand(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(inputDir, "a.png"), testsupport.FillImage(64, 64, 128))
	testsupport.WritePNG(t, filepath.Join(inputDir, "b.png"), testsupport.FillImage(64, 64, 200))

	out, _, err := runCLI(t, []string{"plan", "photos", inputDir, outputDir}, "")
	if err != nil {
		t.Fatalf("plan photos: %v", err)
	}
	if !strings.Contains(out, "a.png") || !strings.Contains(out, "b.png") {
		t.Fatalf("plan output missing inputs: %q", out)
	}
	if !strings.Contains(out, "files_to_process") {
		t.Fatalf("expected JSON plan output for non-terminal writer: %q", out)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "photo_scores.sqlite")); !os.IsNotExist(err) {
		t.Fatalf("plan must not create the score cache")
	}
}

func TestPlanVideosCommand(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inputDir, "clip.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, _, err := runCLI(t, []string{"plan", "videos", inputDir, outputDir}, "")
	if err != nil {
		t.Fatalf("plan videos: %v", err)
	}
	if !strings.Contains(out, "clip.mp4") {
		t.Fatalf("plan output missing source: %q", out)
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	out, _, err := runCLI(t, nil, "")
	if err != nil {
		t.Fatalf("root help: %v", err)
	}
	for _, want := range []string{"photos", "videos", "plan", "config", "preflight"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q: %q", want, out)
		}
	}
}
