package imaging

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// imageExtensions lists the file suffixes treated as photos when scanning
// input directories.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Orientation labels used in manifests.
const (
	OrientationSquare    = "square"
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
)

// Info describes an image header without decoding pixel data.
type Info struct {
	Width       int
	Height      int
	Orientation string
}

// Orientation classifies a width/height pair.
func Orientation(width, height int) string {
	switch {
	case width == height:
		return OrientationSquare
	case width > height:
		return OrientationLandscape
	default:
		return OrientationPortrait
	}
}

// CollectImages walks inputDir recursively and returns every supported image
// path in sorted order.
func CollectImages(inputDir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan images in %s: %w", inputDir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Decode reads and decodes an image file. Decode failures propagate as
// per-item errors; they never abort a batch.
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// ReadInfo decodes only the image header.
func ReadInfo(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open image %s: %w", path, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return Info{}, fmt.Errorf("decode image header %s: %w", path, err)
	}
	return Info{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Orientation: Orientation(cfg.Width, cfg.Height),
	}, nil
}

// Grayscale converts any image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// Downsample scales img to width x height grayscale using bilinear
// interpolation. The result is independent of the source resolution for
// identical pixel content, which is what makes fingerprints stable.
func Downsample(img image.Image, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// EncodeBase64 re-encodes an image file into a base64 payload for the judge.
// PNG stays PNG; everything else becomes JPEG.
func EncodeBase64(path string) (string, error) {
	img, err := Decode(path)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	encoder := base64.NewEncoder(base64.StdEncoding, &buf)
	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = png.Encode(encoder, img)
	} else {
		err = jpeg.Encode(encoder, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return "", fmt.Errorf("encode judge payload for %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("encode judge payload for %s: %w", path, err)
	}
	return buf.String(), nil
}
