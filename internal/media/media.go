package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr string, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// ToolError carries the trimmed stderr of a failed ffmpeg/ffprobe run.
type ToolError struct {
	Binary string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if len(detail) > 400 {
		detail = detail[len(detail)-400:]
	}
	if detail == "" {
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Binary, e.Err, detail)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Option configures the tool.
type Option func(*Tool)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(t *Tool) {
		if executor != nil {
			t.exec = executor
		}
	}
}

// WithBinaries overrides the ffmpeg and ffprobe binary names.
func WithBinaries(ffmpeg, ffprobe string) Option {
	return func(t *Tool) {
		if ffmpeg != "" {
			t.ffmpeg = ffmpeg
		}
		if ffprobe != "" {
			t.ffprobe = ffprobe
		}
	}
}

// Tool wraps ffmpeg and ffprobe invocations.
type Tool struct {
	ffmpeg   string
	ffprobe  string
	exec     Executor
	useHWAcc bool
}

// New constructs a media tool. hwAccel enables hardware-assisted decoding
// on the operations that support it.
func New(hwAccel bool, opts ...Option) *Tool {
	tool := &Tool{
		ffmpeg:   "ffmpeg",
		ffprobe:  "ffprobe",
		exec:     commandExecutor{},
		useHWAcc: hwAccel,
	}
	for _, opt := range opts {
		opt(tool)
	}
	return tool
}

// CheckBinaries verifies both binaries resolve on PATH.
func (t *Tool) CheckBinaries() error {
	for _, binary := range []string{t.ffmpeg, t.ffprobe} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("%s not found on PATH: %w", binary, err)
		}
	}
	return nil
}

func (t *Tool) runFFmpeg(ctx context.Context, args []string) error {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)
	_, stderr, err := t.exec.Run(ctx, t.ffmpeg, full)
	if err != nil {
		return &ToolError{Binary: t.ffmpeg, Stderr: stderr, Err: err}
	}
	return nil
}

func (t *Tool) runFFprobe(ctx context.Context, args []string) (string, error) {
	stdout, stderr, err := t.exec.Run(ctx, t.ffprobe, args)
	if err != nil {
		return "", &ToolError{Binary: t.ffprobe, Stderr: stderr, Err: err}
	}
	if strings.TrimSpace(stdout) == "" {
		return "", &ToolError{Binary: t.ffprobe, Stderr: stderr, Err: errors.New("empty output")}
	}
	return stdout, nil
}
