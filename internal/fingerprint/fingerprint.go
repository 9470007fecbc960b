package fingerprint

import (
	"fmt"
	"image"
	"math/bits"
	"strconv"

	"github.com/corona10/goimagehash"

	"reelpick/internal/imaging"
)

// HashSize is the edge length of the downsampled grid; the hash covers
// HashSize*HashSize samples.
const HashSize = 8

// Fingerprint is a 64-bit perceptual hash of an image. The zero value is not
// a valid fingerprint; use Compute or ParseHex.
type Fingerprint struct {
	hash *goimagehash.ImageHash
}

// Compute derives the fingerprint from decoded pixel data: the image is
// downsampled to an 8x8 grayscale grid and bit i is set iff sample i is at
// least the mean of all 64 samples. Identical pixel content yields an
// identical hash regardless of the source resolution.
func Compute(img image.Image) Fingerprint {
	grid := imaging.Downsample(img, HashSize, HashSize)

	var sum uint64
	samples := make([]uint8, 0, HashSize*HashSize)
	for y := 0; y < HashSize; y++ {
		for x := 0; x < HashSize; x++ {
			v := grid.GrayAt(x, y).Y
			samples = append(samples, v)
			sum += uint64(v)
		}
	}
	mean := float64(sum) / float64(len(samples))

	var value uint64
	for i, sample := range samples {
		if float64(sample) >= mean {
			value |= 1 << uint(i)
		}
	}
	return Fingerprint{hash: goimagehash.NewImageHash(value, goimagehash.AHash)}
}

// ParseHex parses a 64-bit fingerprint from its hexadecimal form.
func ParseHex(value string) (Fingerprint, error) {
	parsed, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("parse fingerprint %q: %w", value, err)
	}
	return Fingerprint{hash: goimagehash.NewImageHash(parsed, goimagehash.AHash)}, nil
}

// Uint64 returns the raw hash bits.
func (f Fingerprint) Uint64() uint64 {
	if f.hash == nil {
		return 0
	}
	return f.hash.GetHash()
}

// Hex renders the fingerprint as a fixed-width lowercase hex string, the
// form stored in the score cache and manifests.
func (f Fingerprint) Hex() string {
	return fmt.Sprintf("%016x", f.Uint64())
}

// IsZero reports whether f was never computed.
func (f Fingerprint) IsZero() bool {
	return f.hash == nil
}

// Distance returns the Hamming distance to another fingerprint.
func (f Fingerprint) Distance(other Fingerprint) int {
	if f.hash != nil && other.hash != nil {
		if d, err := f.hash.Distance(other.hash); err == nil {
			return d
		}
	}
	return bits.OnesCount64(f.Uint64() ^ other.Uint64())
}
