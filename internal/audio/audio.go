package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	windowSeconds = 0.020
	// RMS above this marks a window as speech-active.
	speechRMSThreshold = 0.02
	// Fraction of active windows needed to call the clip speech-bearing.
	activeRatioThreshold = 0.2
)

// Analysis summarizes the audio track of one clip.
type Analysis struct {
	HasSpeech   bool    `json:"has_speech"`
	RMS         float64 `json:"rms"`
	ActiveRatio float64 `json:"active_ratio"`
}

// AnalyzeWAV reads a 16-bit PCM WAV file and reports whether it plausibly
// contains speech: the signal is cut into 20ms windows and the clip counts
// as speech-bearing when enough windows exceed an energy threshold.
func AnalyzeWAV(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	sampleRate, samples, err := decodePCM16(data)
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if len(samples) == 0 {
		return &Analysis{}, nil
	}

	windowSize := int(float64(sampleRate) * windowSeconds)
	if windowSize <= 0 {
		windowSize = len(samples)
	}

	var activeWindows, totalWindows int
	var sumSquares float64
	for start := 0; start < len(samples); start += windowSize {
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		var windowSum float64
		for _, sample := range samples[start:end] {
			value := float64(sample) / 32768.0
			windowSum += value * value
			sumSquares += value * value
		}
		rms := math.Sqrt(windowSum / float64(end-start))
		if rms > speechRMSThreshold {
			activeWindows++
		}
		totalWindows++
	}

	ratio := float64(activeWindows) / float64(totalWindows)
	return &Analysis{
		HasSpeech:   ratio >= activeRatioThreshold,
		RMS:         math.Sqrt(sumSquares / float64(len(samples))),
		ActiveRatio: ratio,
	}, nil
}

// decodePCM16 parses a minimal RIFF/WAVE container and returns the sample
// rate and the first channel's 16-bit samples.
func decodePCM16(data []byte) (int, []int16, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, nil, errors.New("not a RIFF/WAVE file")
	}

	var sampleRate int
	var channels int
	var bitsPerSample int
	var pcm []byte

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return 0, nil, errors.New("fmt chunk too short")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != 1 {
				return 0, nil, fmt.Errorf("unsupported wav format %d", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}
		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if sampleRate == 0 || pcm == nil {
		return 0, nil, errors.New("missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return 0, nil, fmt.Errorf("unsupported sample width %d bits", bitsPerSample)
	}
	if channels < 1 {
		channels = 1
	}

	frameSize := 2 * channels
	samples := make([]int16, 0, len(pcm)/frameSize)
	for i := 0; i+1 < len(pcm); i += frameSize {
		samples = append(samples, int16(binary.LittleEndian.Uint16(pcm[i:i+2])))
	}
	return sampleRate, samples, nil
}
