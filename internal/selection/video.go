package selection

import (
	"sort"

	"reelpick/internal/fingerprint"
)

// Brightness floor below which a clip frame is considered unusable.
const minClipBrightness = 15.0

// Clip is one scored video segment offered to selection.
type Clip struct {
	Path        string
	Source      string
	Index       int
	Duration    float64
	Score       float64
	Brightness  float64
	Fingerprint fingerprint.Fingerprint
	Err         error
	HasScore    bool
}

// VideoOptions controls clip selection for one source.
type VideoOptions struct {
	MaxSourceSeconds    float64
	TargetDigestSeconds float64
	MaxSelectedClips    int
	Dedupe              bool
	HammingThreshold    int
}

// Budget returns the effective duration quota for one source, the tighter of
// the per-source cap and the digest target.
func (o VideoOptions) Budget() float64 {
	budget := o.MaxSourceSeconds
	if o.TargetDigestSeconds > 0 && (budget <= 0 || o.TargetDigestSeconds < budget) {
		budget = o.TargetDigestSeconds
	}
	return budget
}

// Accumulator carries the set of accepted fingerprints across selection
// calls. With global scope the same accumulator is threaded through every
// source in the batch, so source processing order decides which
// near-duplicates survive.
type Accumulator struct {
	accepted  []fingerprint.Fingerprint
	threshold int
}

// NewAccumulator returns an accumulator rejecting fingerprints within
// threshold bits of any previously admitted one.
func NewAccumulator(threshold int) *Accumulator {
	return &Accumulator{threshold: threshold}
}

// IsDuplicate reports whether fp collides with an already admitted
// fingerprint. Zero fingerprints never collide.
func (a *Accumulator) IsDuplicate(fp fingerprint.Fingerprint) bool {
	if a == nil || fp.IsZero() {
		return false
	}
	for _, seen := range a.accepted {
		if seen.Distance(fp) <= a.threshold {
			return true
		}
	}
	return false
}

// Admit records fp as accepted.
func (a *Accumulator) Admit(fp fingerprint.Fingerprint) {
	if a == nil || fp.IsZero() {
		return
	}
	a.accepted = append(a.accepted, fp)
}

// VideoResult reports the selection outcome for one source.
type VideoResult struct {
	Selected             []Clip
	TotalClips           int
	ScoredClips          int
	RemovedDuplicates    int
	TotalSelectedSeconds float64
	Stats                ScoreStats
}

// SelectClips walks the scored clips in descending score order, greedily
// filling the duration budget. A clip is rejected when it failed, was never
// scored, is too dark, would overflow the budget, or duplicates an accepted
// clip. A rejected clip does not end the walk: a shorter clip later in the
// order may still fit. acc may be nil when deduplication is disabled.
func SelectClips(clips []Clip, opts VideoOptions, acc *Accumulator) VideoResult {
	result := VideoResult{TotalClips: len(clips)}

	eligible := make([]Clip, 0, len(clips))
	scores := make([]float64, 0, len(clips))
	for _, clip := range clips {
		if clip.Err != nil || !clip.HasScore {
			continue
		}
		scores = append(scores, clip.Score)
		if clip.Brightness < minClipBrightness {
			continue
		}
		eligible = append(eligible, clip)
	}
	result.ScoredClips = len(scores)
	result.Stats = ComputeScoreStats(scores)
	sortClipsByScoreDesc(eligible)

	budget := opts.Budget()
	var total float64
	for _, clip := range eligible {
		if opts.MaxSelectedClips > 0 && len(result.Selected) >= opts.MaxSelectedClips {
			break
		}
		if budget > 0 && total+clip.Duration > budget {
			continue
		}
		if opts.Dedupe && acc.IsDuplicate(clip.Fingerprint) {
			result.RemovedDuplicates++
			continue
		}
		if opts.Dedupe {
			acc.Admit(clip.Fingerprint)
		}
		result.Selected = append(result.Selected, clip)
		total += clip.Duration
		if budget > 0 && total >= budget {
			break
		}
	}
	result.TotalSelectedSeconds = total
	return result
}

func sortClipsByScoreDesc(clips []Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].Score > clips[j].Score
	})
}
