package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpick/internal/config"
	"reelpick/internal/testsupport"
)

func TestCheckBinaryFound(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))

	result := CheckBinary("FFmpeg", "ffmpeg")
	if !result.Passed {
		t.Fatalf("result = %+v", result)
	}
}

func TestCheckBinaryMissing(t *testing.T) {
	result := CheckBinary("FFmpeg", "definitely-not-a-binary-xyz")
	if result.Passed {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.Detail, "not found") {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckJudgeReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))
	defer server.Close()

	result := CheckJudge(context.Background(), config.Judge{BaseURL: server.URL, Model: "demo"})
	if !result.Passed {
		t.Fatalf("result = %+v", result)
	}
}

func TestCheckJudgeUnreachable(t *testing.T) {
	result := CheckJudge(context.Background(), config.Judge{BaseURL: "http://127.0.0.1:1", Model: "demo"})
	if result.Passed {
		t.Fatalf("result = %+v", result)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("Output directory", dir); !result.Passed {
		t.Fatalf("result = %+v", result)
	}

	missing := filepath.Join(dir, "absent")
	if result := CheckDirectoryAccess("Output directory", missing); result.Passed {
		t.Fatalf("result = %+v", result)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if result := CheckDirectoryAccess("Output directory", file); result.Passed {
		t.Fatalf("result = %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	result := CheckFreeSpace("Output volume", t.TempDir())
	if result.Detail == "" {
		t.Fatal("expected free-space detail")
	}
}

func TestAllPassed(t *testing.T) {
	passing := []Result{{Passed: true}, {Passed: true}}
	if !AllPassed(passing) {
		t.Fatal("AllPassed = false for passing set")
	}
	if AllPassed([]Result{{Passed: true}, {}}) {
		t.Fatal("AllPassed = true with a failure present")
	}
}
