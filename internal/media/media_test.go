package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeExecutor struct {
	calls []call
	run   func(binary string, args []string) (string, string, error)
}

type call struct {
	binary string
	args   []string
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) (string, string, error) {
	f.calls = append(f.calls, call{binary: binary, args: args})
	return f.run(binary, args)
}

func probeJSON(duration float64, width, height int, fps string) string {
	return fmt.Sprintf(`{
        "streams": [
            {"codec_type": "audio"},
            {"codec_type": "video", "width": %d, "height": %d, "r_frame_rate": %q}
        ],
        "format": {"duration": "%v"}
    }`, width, height, fps, duration)
}

func TestProbeParsesOutput(t *testing.T) {
	executor := &fakeExecutor{run: func(string, []string) (string, string, error) {
		return probeJSON(12.48, 1920, 1080, "30000/1001"), "", nil
	}}
	tool := New(false, WithExecutor(executor))

	result, err := tool.Probe(context.Background(), "/in/holiday.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if result.Duration != 12.48 || result.Width != 1920 || result.Height != 1080 {
		t.Fatalf("result = %+v", result)
	}
	if result.FPS < 29.96 || result.FPS > 29.98 {
		t.Fatalf("fps = %v", result.FPS)
	}
	if len(executor.calls) != 1 || executor.calls[0].binary != "ffprobe" {
		t.Fatalf("calls = %+v", executor.calls)
	}
}

func TestProbeErrorCarriesStderr(t *testing.T) {
	executor := &fakeExecutor{run: func(string, []string) (string, string, error) {
		return "", "holiday.mp4: Invalid data found", errors.New("exit status 1")
	}}
	tool := New(false, WithExecutor(executor))

	_, err := tool.Probe(context.Background(), "/in/holiday.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("err = %T, want *ToolError", err)
	}
	if !strings.Contains(toolErr.Error(), "Invalid data found") {
		t.Fatalf("error message = %q", toolErr.Error())
	}
}

func TestParseFPS(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range tests {
		if got := parseFPS(tc.raw); got != tc.want {
			t.Fatalf("parseFPS(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestCollectVideosSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MOV", "notes.txt", "sub/c.mkv"} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	videos, err := CollectVideos(root)
	if err != nil {
		t.Fatalf("CollectVideos: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.MOV"),
		filepath.Join(root, "b.mp4"),
		filepath.Join(root, "sub", "c.mkv"),
	}
	if len(videos) != len(want) {
		t.Fatalf("videos = %v", videos)
	}
	for i := range want {
		if videos[i] != want[i] {
			t.Fatalf("videos[%d] = %s, want %s", i, videos[i], want[i])
		}
	}
}

func TestSplitDropsShortTail(t *testing.T) {
	destDir := t.TempDir()
	durations := map[string]float64{
		"clip_0000.mp4": 6.0,
		"clip_0001.mp4": 6.0,
		"clip_0002.mp4": 0.8,
	}
	executor := &fakeExecutor{}
	executor.run = func(binary string, args []string) (string, string, error) {
		if binary == "ffmpeg" {
			for name := range durations {
				if err := os.WriteFile(filepath.Join(destDir, name), []byte("x"), 0o644); err != nil {
					t.Fatalf("write segment: %v", err)
				}
			}
			return "", "", nil
		}
		// ffprobe: last arg is the path.
		name := filepath.Base(args[len(args)-1])
		return probeJSON(durations[name], 1920, 1080, "30/1"), "", nil
	}
	tool := New(false, WithExecutor(executor))

	segments, err := tool.Split(context.Background(), "/in/holiday.mp4", destDir, 2.0, 6.0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %+v, want short tail dropped", segments)
	}
	if segments[0].Start != 0 || segments[1].Start != 6.0 {
		t.Fatalf("offsets = %v, %v", segments[0].Start, segments[1].Start)
	}
	if segments[1].Index != 1 {
		t.Fatalf("index = %d", segments[1].Index)
	}
	if _, statErr := os.Stat(filepath.Join(destDir, "clip_0002.mp4")); !os.IsNotExist(statErr) {
		t.Fatal("short segment file still present")
	}
}

func TestExtractFrameSeeksMidpoint(t *testing.T) {
	executor := &fakeExecutor{run: func(string, []string) (string, string, error) {
		return "", "", nil
	}}
	tool := New(false, WithExecutor(executor))
	dest := filepath.Join(t.TempDir(), "frames", "clip_0000.jpg")

	if err := tool.ExtractFrame(context.Background(), "/tmp/clip.mp4", 6.0, dest); err != nil {
		t.Fatalf("ExtractFrame: %v", err)
	}
	args := executor.calls[0].args
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 3 ") {
		t.Fatalf("args = %v, want midpoint seek", args)
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	listPath := filepath.Join(t.TempDir(), "concat", "holiday.txt")
	clips := []string{"/out/temp/a.mp4", "/out/temp/it's.mp4"}

	if err := WriteConcatList(listPath, clips); err != nil {
		t.Fatalf("WriteConcatList: %v", err)
	}
	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "file '/out/temp/a.mp4'\n") {
		t.Fatalf("list = %q", content)
	}
	if !strings.Contains(content, `it'\''s.mp4`) {
		t.Fatalf("quote not escaped: %q", content)
	}
}

func TestWriteConcatListRejectsEmpty(t *testing.T) {
	if err := WriteConcatList(filepath.Join(t.TempDir(), "x.txt"), nil); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}
