package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"reelpick/internal/config"
	"reelpick/internal/judge"
)

// Free space below this is almost certainly not enough for split clips and
// a re-encoded digest.
const minFreeBytes = 1 << 30

// CheckBinary verifies the named command resolves on PATH.
func CheckBinary(name, command string) Result {
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckJudge verifies the judge endpoint responds. It uses a short timeout
// and a single attempt.
func CheckJudge(ctx context.Context, cfg config.Judge) Result {
	const name = "Judge"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := judge.NewClient(judge.Config{
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: 10,
	}, judge.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeJudgeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", cfg.BaseURL)}
}

// CheckDirectoryAccess verifies the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the volume backing path has workable headroom.
func CheckFreeSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%.1f GiB free", float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (below 1 GiB minimum)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

func summarizeJudgeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (judge unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (judge unreachable)"
	}
	return err.Error()
}
