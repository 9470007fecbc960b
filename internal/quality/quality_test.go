package quality_test

import (
	"image"
	"image/color"
	"testing"

	"reelpick/internal/quality"
)

func solidGray(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func checkerboard(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestAnalyzeDarkFlat(t *testing.T) {
	m := quality.Analyze(solidGray(100, 80, 20))
	if m.Brightness < 19 || m.Brightness > 21 {
		t.Fatalf("brightness = %f", m.Brightness)
	}
	if m.Resolution != 8000 {
		t.Fatalf("resolution = %f", m.Resolution)
	}
	if !m.Dark {
		t.Fatal("expected dark flag")
	}
	if m.Overexposed {
		t.Fatal("unexpected overexposed flag")
	}
	// Flat image has no edges anywhere.
	if !m.Blur || !m.BlurCenter || !m.BlurLower || !m.BlurStrong {
		t.Fatalf("flat image should trip every blur flag: %+v", m)
	}
}

func TestAnalyzeOverexposed(t *testing.T) {
	m := quality.Analyze(solidGray(64, 64, 250))
	if !m.Overexposed {
		t.Fatalf("brightness %f should flag overexposed", m.Brightness)
	}
	if m.Dark {
		t.Fatal("unexpected dark flag")
	}
}

func TestAnalyzeSharpHasHighVariance(t *testing.T) {
	m := quality.Analyze(checkerboard(64, 64))
	if m.Blur {
		t.Fatalf("checkerboard flagged blurry (edge variance %f)", m.EdgeVariance)
	}
	if m.BlurCenter || m.BlurStrong {
		t.Fatalf("checkerboard center flagged blurry (center variance %f)", m.CenterEdgeVariance)
	}
	if m.BlurLower {
		t.Fatalf("checkerboard lower band flagged blurry (lower variance %f)", m.LowerEdgeVariance)
	}
	if m.EdgeVariance <= 0 || m.CenterEdgeVariance <= 0 || m.LowerEdgeVariance <= 0 {
		t.Fatalf("expected positive variances: %+v", m)
	}
}

func TestAnalyzeMidBrightnessNoExposureFlags(t *testing.T) {
	m := quality.Analyze(solidGray(32, 32, 128))
	if m.Dark || m.Overexposed {
		t.Fatalf("mid gray flagged: dark=%v overexposed=%v", m.Dark, m.Overexposed)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := quality.Analyze(checkerboard(48, 48))
	b := quality.Analyze(checkerboard(48, 48))
	if a != b {
		t.Fatalf("non-deterministic metrics:\n%+v\n%+v", a, b)
	}
}
