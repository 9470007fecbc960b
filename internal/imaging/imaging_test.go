package imaging_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"reelpick/internal/imaging"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCollectImagesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), solid(4, 4, color.White))
	writePNG(t, filepath.Join(dir, "nested", "a.png"), solid(4, 4, color.White))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	paths, err := imaging.CollectImages(dir)
	if err != nil {
		t.Fatalf("CollectImages: %v", err)
	}
	want := []string{
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "nested", "a.png"),
	}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestOrientation(t *testing.T) {
	cases := []struct {
		w, h int
		want string
	}{
		{10, 10, imaging.OrientationSquare},
		{20, 10, imaging.OrientationLandscape},
		{10, 20, imaging.OrientationPortrait},
	}
	for _, tc := range cases {
		if got := imaging.Orientation(tc.w, tc.h); got != tc.want {
			t.Errorf("Orientation(%d, %d) = %q, want %q", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestReadInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	writePNG(t, path, solid(32, 8, color.White))

	info, err := imaging.ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if info.Width != 32 || info.Height != 8 {
		t.Fatalf("dimensions = %dx%d", info.Width, info.Height)
	}
	if info.Orientation != imaging.OrientationLandscape {
		t.Fatalf("orientation = %q", info.Orientation)
	}
}

func TestDecodeFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := imaging.Decode(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDownsampleDimensionsAndRange(t *testing.T) {
	img := solid(100, 60, color.Gray{Y: 200})
	small := imaging.Downsample(img, 8, 8)
	bounds := small.Bounds()
	if bounds.Dx() != 8 || bounds.Dy() != 8 {
		t.Fatalf("downsample bounds = %v", bounds)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := small.GrayAt(x, y).Y
			if v < 190 || v > 210 {
				t.Fatalf("sample (%d,%d) = %d, want near 200", x, y, v)
			}
		}
	}
}

func TestEncodeBase64NonEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	writePNG(t, path, solid(16, 16, color.White))
	payload, err := imaging.EncodeBase64(path)
	if err != nil {
		t.Fatalf("EncodeBase64: %v", err)
	}
	if payload == "" {
		t.Fatal("expected non-empty payload")
	}
}
