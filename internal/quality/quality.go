package quality

import (
	"image"

	"reelpick/internal/imaging"
)

// Fixed thresholds for the boolean quality flags.
const (
	darkBrightness        = 50.0
	overexposedBrightness = 205.0
	minEdgeVariance       = 140.0
	minCenterEdgeVariance = 220.0
	minLowerEdgeVariance  = 180.0
	minStrongCenterEdge   = 140.0
)

// Metrics is a flat record of the pixel-level quality signals for one image.
// It is a pure function of decoded pixels and immutable once computed.
type Metrics struct {
	Brightness         float64 `json:"brightness"`
	Resolution         float64 `json:"resolution"`
	EdgeVariance       float64 `json:"edge_variance"`
	CenterEdgeVariance float64 `json:"center_edge_variance"`
	LowerEdgeVariance  float64 `json:"lower_edge_variance"`
	Dark               bool    `json:"dark"`
	Overexposed        bool    `json:"overexposed"`
	Blur               bool    `json:"blur"`
	BlurCenter         bool    `json:"blur_center"`
	BlurLower          bool    `json:"blur_lower"`
	BlurStrong         bool    `json:"blur_strong"`
}

// Analyze computes the quality metrics for a decoded image.
//
// The three edge-variance measures run the same edge filter over different
// regions: the whole frame, the central 50%x50% crop, and a lower band
// (10%-90% horizontally, 50%-95% vertically) that targets a seated or
// lap-held subject.
func Analyze(img image.Image) Metrics {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	brightness := meanLuma(gray)
	edge := edgeVariance(gray)
	center := edgeVariance(crop(gray, 0.25, 0.75, 0.25, 0.75))
	lower := edgeVariance(crop(gray, 0.10, 0.90, 0.50, 0.95))

	return Metrics{
		Brightness:         brightness,
		Resolution:         float64(width * height),
		EdgeVariance:       edge,
		CenterEdgeVariance: center,
		LowerEdgeVariance:  lower,
		Dark:               brightness < darkBrightness,
		Overexposed:        brightness > overexposedBrightness,
		Blur:               edge < minEdgeVariance,
		BlurCenter:         center < minCenterEdgeVariance,
		BlurLower:          lower < minLowerEdgeVariance,
		BlurStrong:         center < minStrongCenterEdge,
	}
}

func meanLuma(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	var sum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += uint64(gray.GrayAt(x, y).Y)
		}
	}
	return float64(sum) / float64(total)
}

// edgeVariance applies a 3x3 edge-magnitude kernel (8-neighbor Laplacian,
// clamped to [0,255]) over the interior of the region and returns the
// variance of the response. Low variance means few sharp transitions, i.e.
// blur.
func edgeVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	if bounds.Dx() < 3 || bounds.Dy() < 3 {
		return 0
	}

	var sum, sumSq float64
	var count int
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := int(gray.GrayAt(x, y).Y)
			neighbors := int(gray.GrayAt(x-1, y-1).Y) + int(gray.GrayAt(x, y-1).Y) + int(gray.GrayAt(x+1, y-1).Y) +
				int(gray.GrayAt(x-1, y).Y) + int(gray.GrayAt(x+1, y).Y) +
				int(gray.GrayAt(x-1, y+1).Y) + int(gray.GrayAt(x, y+1).Y) + int(gray.GrayAt(x+1, y+1).Y)
			response := 8*center - neighbors
			if response < 0 {
				response = 0
			} else if response > 255 {
				response = 255
			}
			v := float64(response)
			sum += v
			sumSq += v * v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	mean := sum / float64(count)
	return sumSq/float64(count) - mean*mean
}

// crop returns the sub-grid spanned by the fractional bounds, mirroring the
// integer truncation the crop offsets use elsewhere in the pipeline.
func crop(gray *image.Gray, left, right, top, bottom float64) *image.Gray {
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	rect := image.Rect(
		bounds.Min.X+int(float64(w)*left),
		bounds.Min.Y+int(float64(h)*top),
		bounds.Min.X+int(float64(w)*right),
		bounds.Min.Y+int(float64(h)*bottom),
	)
	return gray.SubImage(rect).(*image.Gray)
}
