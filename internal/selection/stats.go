package selection

import (
	"math"
	"sort"
)

// ScoreStats summarizes the score distribution of a scored batch.
type ScoreStats struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// ComputeScoreStats returns the distribution summary for scores. An empty
// input yields the zero value.
func ComputeScoreStats(scores []float64) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	p90Index := int(math.Floor(0.9 * float64(n-1)))

	return ScoreStats{
		Min:    sorted[0],
		Median: median,
		P90:    sorted[p90Index],
		Max:    sorted[n-1],
	}
}
