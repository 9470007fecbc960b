package score

import "reelpick/internal/quality"

// Penalty weights. Each pass subtracts weight * penaltyScale per true flag
// and clamps afterwards, so the passes are order-independent in effect.
const (
	penaltyScale = 0.5

	darkPenalty       = 0.2
	blurStrongPenalty = 0.4
	blurCenterPenalty = 0.25
	blurLowerPenalty  = 0.15

	riskBlurPenalty        = 0.25
	riskOutOfFocusPenalty  = 0.25
	riskDarkPenalty        = 0.15
	riskOverexposedPenalty = 0.15

	lowResolutionDeduction = 0.1
	minShortSide           = 720
)

// ApplyQualityCorrections discounts a judge score for objective pixel-level
// defects: darkness, the blur flags, and low resolution.
func ApplyQualityCorrections(value float64, metrics quality.Metrics, width, height int) float64 {
	if metrics.Dark {
		value -= darkPenalty * penaltyScale
	}
	if metrics.BlurStrong {
		value -= blurStrongPenalty * penaltyScale
	}
	if metrics.BlurCenter {
		value -= blurCenterPenalty * penaltyScale
	}
	if metrics.BlurLower {
		value -= blurLowerPenalty * penaltyScale
	}

	shortSide := width
	if height < shortSide {
		shortSide = height
	}
	if shortSide < minShortSide {
		value -= lowResolutionDeduction
	}

	return Clamp01(value)
}

// ApplyRiskPenalties discounts a score for the judge's own risk flags, so a
// poor item is suppressed even when only one of the two signals catches it.
func ApplyRiskPenalties(value float64, risks Risks) float64 {
	if risks.Blur {
		value -= riskBlurPenalty * penaltyScale
	}
	if risks.OutOfFocus {
		value -= riskOutOfFocusPenalty * penaltyScale
	}
	if risks.Dark {
		value -= riskDarkPenalty * penaltyScale
	}
	if risks.Overexposed {
		value -= riskOverexposedPenalty * penaltyScale
	}
	return Clamp01(value)
}
