package score

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidJudgeResponse signals a judge payload that is not a structured
// object at all. The defect is structural, so callers must not retry.
var ErrInvalidJudgeResponse = errors.New("judge response is not a JSON object")

// Risks carries the judge's self-reported defect flags.
type Risks struct {
	Blur        bool `json:"blur"`
	Dark        bool `json:"dark"`
	Overexposed bool `json:"overexposed"`
	OutOfFocus  bool `json:"out_of_focus"`
}

// Analysis is the canonical, fully-typed form of a judge response. All
// downstream code operates on this shape; Normalize is the only place the
// untrusted payload is touched.
type Analysis struct {
	Caption string   `json:"caption"`
	Tags    []string `json:"tags"`
	Risks   Risks    `json:"risks"`
	Score   float64  `json:"score"`
}

// Normalize validates and repairs a raw judge payload into the canonical
// schema. Missing tags/risks default to empty, non-list tags become an empty
// list, non-mapping risks become all-false, numeric-looking strings are
// accepted for the score, and the score is clamped to [0,1].
func Normalize(payload string) (Analysis, error) {
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Analysis{}, ErrInvalidJudgeResponse
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Analysis{}, ErrInvalidJudgeResponse
	}
	return normalizeObject(obj), nil
}

func normalizeObject(obj map[string]any) Analysis {
	analysis := Analysis{
		Tags: []string{},
	}

	if caption, ok := obj["caption"].(string); ok {
		analysis.Caption = strings.TrimSpace(caption)
	}

	if rawTags, ok := obj["tags"].([]any); ok {
		for _, tag := range rawTags {
			if s, ok := tag.(string); ok {
				analysis.Tags = append(analysis.Tags, s)
			}
		}
	}

	if rawRisks, ok := obj["risks"].(map[string]any); ok {
		analysis.Risks = Risks{
			Blur:        coerceBool(rawRisks["blur"]),
			Dark:        coerceBool(rawRisks["dark"]),
			Overexposed: coerceBool(rawRisks["overexposed"]),
			OutOfFocus:  coerceBool(rawRisks["out_of_focus"]),
		}
	}

	analysis.Score = Clamp01(coerceFloat(obj["score"]))
	return analysis
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

func coerceFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
	case json.Number:
		if parsed, err := v.Float64(); err == nil {
			return parsed
		}
	}
	return 0
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
