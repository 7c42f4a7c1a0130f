// internal/compatibility/age.go
package compatibility

import (
	"fmt"
	"math"
)

const (
	lifeStageThreshold = 0.7
	// moderateGapFloor is the tiered score at a ten year gap.
	moderateGapFloor = 0.2
)

type AgeAnalysis struct {
	AgeDifference      int
	MaxAgeDiff         int
	Curve              AgeCurve
	CompatibilityScore float64
	Reason             string
	LifeStageMatch     bool
}

func (a AgeAnalysis) Factor() FactorResult {
	meta := map[string]interface{}{
		"age_difference":   a.AgeDifference,
		"life_stage_match": a.LifeStageMatch,
		"curve":            string(a.Curve),
	}
	if a.Curve == AgeCurveLinear {
		meta["max_age_diff"] = a.MaxAgeDiff
	}
	return FactorResult{
		CompatibilityScore: a.CompatibilityScore,
		Reason:             a.Reason,
		Metadata:           meta,
	}
}

// AnalyzeAge scores two ages with the given curve. Preferences are only
// consulted by the linear curve.
func AnalyzeAge(a, b Profile, curve AgeCurve) (AgeAnalysis, error) {
	diff := a.Age - b.Age
	if diff < 0 {
		diff = -diff
	}

	var analysis AgeAnalysis
	switch curve {
	case AgeCurveTiered:
		analysis = tieredAge(diff)
	case AgeCurveLinear:
		for _, p := range []Profile{a, b} {
			if p.Preferences.MaxAgeDiff < 0 {
				return AgeAnalysis{}, fmt.Errorf("%w: %w (%s: %d)", ErrConfiguration, ErrNegativeMaxAgeDiff, p.Name, p.Preferences.MaxAgeDiff)
			}
		}
		analysis = linearAge(diff, maxAgeDiff(a.Preferences, b.Preferences))
	default:
		return AgeAnalysis{}, fmt.Errorf("%w: %w %q", ErrConfiguration, ErrUnsupportedAgeCurve, curve)
	}

	analysis.AgeDifference = diff
	analysis.Curve = curve
	analysis.LifeStageMatch = analysis.CompatibilityScore > lifeStageThreshold
	return analysis, nil
}

func tieredAge(diff int) AgeAnalysis {
	d := float64(diff)
	switch {
	case diff <= 2:
		return AgeAnalysis{CompatibilityScore: 1.0, Reason: "Very close in age - excellent life stage alignment"}
	case diff <= 5:
		return AgeAnalysis{CompatibilityScore: 0.8, Reason: "Good age compatibility - similar life experiences"}
	case diff <= 10:
		return AgeAnalysis{CompatibilityScore: math.Max(moderateGapFloor, 0.6-(d-5)*0.08), Reason: "Moderate age gap - some life stage differences"}
	default:
		// Flat at the moderate tier's floor. The 0.4-(d-10)*0.02 slope would
		// give 0.38 at eleven years and rise above the ten year score.
		return AgeAnalysis{CompatibilityScore: moderateGapFloor, Reason: "Significant age gap - may have different priorities"}
	}
}

func linearAge(diff, maxDiff int) AgeAnalysis {
	analysis := AgeAnalysis{MaxAgeDiff: maxDiff}
	if maxDiff == 0 {
		analysis.CompatibilityScore = 1.0
		analysis.Reason = "No age preference limit set"
		return analysis
	}

	analysis.CompatibilityScore = math.Max(0, 1-float64(diff)/float64(maxDiff))
	if diff <= maxDiff {
		analysis.Reason = fmt.Sprintf("Age difference of %d years within preferred range of %d", diff, maxDiff)
	} else {
		analysis.Reason = fmt.Sprintf("Age difference of %d years exceeds preferred range of %d", diff, maxDiff)
	}
	return analysis
}

func maxAgeDiff(a, b Preferences) int {
	if a.MaxAgeDiff > b.MaxAgeDiff {
		return a.MaxAgeDiff
	}
	return b.MaxAgeDiff
}
