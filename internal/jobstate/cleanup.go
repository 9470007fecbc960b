package jobstate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reelpick/internal/logging"
)

const (
	deleteAttempts = 3
	deleteBackoff  = 200 * time.Millisecond
)

// SentinelName is the only directory base name cleanup will ever delete.
const SentinelName = "temp"

// ErrUnsafeCleanupTarget reports that the working directory failed the
// containment or naming checks; cleanup is refused, not attempted partially.
var ErrUnsafeCleanupTarget = errors.New("unsafe cleanup target")

// CleanupOptions gates the removal of working artifacts.
type CleanupOptions struct {
	// WorkDir is the working tree to remove.
	WorkDir string
	// OutputDir is the batch output root that must contain WorkDir.
	OutputDir string
	// Keep preserves the working tree regardless of job outcome.
	Keep bool
	// BatchFailed reports per-item errors outside the ledger.
	BatchFailed bool
	// Sleeper overrides the backoff sleep between delete retries.
	Sleeper func(time.Duration)
}

// CleanupReport records every outcome of a cleanup pass.
type CleanupReport struct {
	Skipped      bool
	SkipReason   string
	DeletedFiles []string
	DeletedDirs  []string
	Failed       []CleanupFailure
}

// CleanupFailure is one path that could not be removed.
type CleanupFailure struct {
	Path string
	Err  error
}

// CleanupTemp removes the working tree after a fully successful batch. It
// refuses to act when the caller asked to keep artifacts, when any item or
// ledger entry failed, or when the target does not resolve to a sentinel
// directory inside the output root. Files go first with bounded retries,
// then directories deepest-first and only if empty.
func CleanupTemp(ledger *Ledger, opts CleanupOptions, logger *slog.Logger) (CleanupReport, error) {
	report := CleanupReport{}
	if logger == nil {
		logger = logging.NewNop()
	}

	if opts.Keep {
		report.Skipped = true
		report.SkipReason = "keep requested"
		logger.Info("keeping working directory", logging.String("dir", opts.WorkDir))
		return report, nil
	}
	if opts.BatchFailed || (ledger != nil && ledger.Failed()) {
		report.Skipped = true
		report.SkipReason = "batch reported failures"
		logger.Warn("skipping cleanup after failures", logging.String("dir", opts.WorkDir))
		return report, nil
	}

	if err := verifyCleanupTarget(opts.WorkDir, opts.OutputDir); err != nil {
		report.Skipped = true
		report.SkipReason = err.Error()
		logger.Warn("refusing cleanup", logging.Error(err), logging.String("dir", opts.WorkDir))
		if errors.Is(err, ErrUnsafeCleanupTarget) {
			return report, err
		}
		return report, nil
	}

	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = time.Sleep
	}

	files, dirs, walkErr := collectTree(opts.WorkDir)
	if walkErr != nil {
		report.Skipped = true
		report.SkipReason = walkErr.Error()
		return report, walkErr
	}

	for _, file := range files {
		if err := removeWithRetry(file, sleeper); err != nil {
			report.Failed = append(report.Failed, CleanupFailure{Path: file, Err: err})
			logger.Warn("failed to delete file", logging.String("path", file), logging.Error(err))
			continue
		}
		report.DeletedFiles = append(report.DeletedFiles, file)
	}

	// Deepest first so children disappear before their parents.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		if err := removeDirWithRetry(dir, sleeper); err != nil {
			report.Failed = append(report.Failed, CleanupFailure{Path: dir, Err: err})
			logger.Warn("failed to remove directory", logging.String("path", dir), logging.Error(err))
			continue
		}
		report.DeletedDirs = append(report.DeletedDirs, dir)
	}

	logger.Info("cleaned working directory",
		logging.String("dir", opts.WorkDir),
		logging.Int("files", len(report.DeletedFiles)),
		logging.Int("dirs", len(report.DeletedDirs)),
		logging.Int("failed", len(report.Failed)))
	return report, nil
}

// verifyCleanupTarget checks the sentinel base name and that the canonical
// working path is nested under the canonical output root.
func verifyCleanupTarget(workDir, outputDir string) error {
	if workDir == "" || outputDir == "" {
		return fmt.Errorf("%w: missing directory", ErrUnsafeCleanupTarget)
	}
	if filepath.Base(filepath.Clean(workDir)) != SentinelName {
		return fmt.Errorf("%w: %s is not a %s directory", ErrUnsafeCleanupTarget, workDir, SentinelName)
	}

	resolvedWork, err := filepath.EvalSymlinks(workDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing to clean.
			return fmt.Errorf("working directory does not exist: %s", workDir)
		}
		return fmt.Errorf("%w: resolve %s: %v", ErrUnsafeCleanupTarget, workDir, err)
	}
	resolvedOut, err := filepath.EvalSymlinks(outputDir)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrUnsafeCleanupTarget, outputDir, err)
	}

	rel, err := filepath.Rel(resolvedOut, resolvedWork)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == "." {
		return fmt.Errorf("%w: %s is outside %s", ErrUnsafeCleanupTarget, workDir, outputDir)
	}
	return nil
}

func collectTree(root string) (files, dirs []string, err error) {
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if entry.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, dirs, nil
}

func removeWithRetry(path string, sleeper func(time.Duration)) error {
	var lastErr error
	for attempt := 0; attempt < deleteAttempts; attempt++ {
		if attempt > 0 {
			sleeper(deleteBackoff)
		}
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func removeDirWithRetry(path string, sleeper func(time.Duration)) error {
	var lastErr error
	for attempt := 0; attempt < deleteAttempts; attempt++ {
		if attempt > 0 {
			sleeper(deleteBackoff)
		}
		entries, err := os.ReadDir(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err == nil && len(entries) > 0 {
			return fmt.Errorf("directory not empty: %s", path)
		}
		err = os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		lastErr = err
	}
	return lastErr
}
