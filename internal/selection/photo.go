package selection

import (
	"sort"

	"reelpick/internal/fingerprint"
)

// Candidate is one scored media item offered to photo selection.
type Candidate struct {
	Path        string
	Score       float64
	Fingerprint fingerprint.Fingerprint
	Err         error
	HasScore    bool
}

// PhotoOptions controls photo selection.
type PhotoOptions struct {
	TargetCount int
	// Dedupe collapses near-duplicate clusters down to their best-scoring
	// member. When disabled every eligible candidate competes on score alone.
	Dedupe           bool
	HammingThreshold int
}

// PhotoResult reports the selection outcome for a photo batch.
type PhotoResult struct {
	Selected          []Candidate
	RemovedDuplicates int
	TotalCandidates   int
	EligibleCount     int
}

// SelectPhotos picks up to TargetCount candidates by descending score,
// collapsing near-duplicates first. Candidates with an error or without a
// score never qualify. A candidate with no fingerprint cannot be clustered
// and competes individually.
func SelectPhotos(candidates []Candidate, opts PhotoOptions) PhotoResult {
	result := PhotoResult{TotalCandidates: len(candidates)}

	eligible := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Err != nil || !cand.HasScore {
			continue
		}
		eligible = append(eligible, cand)
	}
	result.EligibleCount = len(eligible)
	sortByScoreDesc(eligible)

	survivors := eligible
	if opts.Dedupe {
		survivors = make([]Candidate, 0, len(eligible))
		var representatives []fingerprint.Fingerprint
		for _, cand := range eligible {
			if cand.Fingerprint.IsZero() {
				survivors = append(survivors, cand)
				continue
			}
			if joinsCluster(representatives, cand.Fingerprint, opts.HammingThreshold) {
				// The representative was seen earlier in the descending walk,
				// so it already carries the higher score.
				result.RemovedDuplicates++
				continue
			}
			representatives = append(representatives, cand.Fingerprint)
			survivors = append(survivors, cand)
		}
		sortByScoreDesc(survivors)
	}

	if opts.TargetCount > 0 && len(survivors) > opts.TargetCount {
		survivors = survivors[:opts.TargetCount]
	}
	result.Selected = survivors
	return result
}

func joinsCluster(representatives []fingerprint.Fingerprint, fp fingerprint.Fingerprint, threshold int) bool {
	for _, rep := range representatives {
		if rep.Distance(fp) <= threshold {
			return true
		}
	}
	return false
}

func sortByScoreDesc(items []Candidate) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}
