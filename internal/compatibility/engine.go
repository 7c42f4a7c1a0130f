// internal/compatibility/engine.go

// Package compatibility scores two dating profiles on age, interests and
// location and explains the result.
package compatibility

import (
	"fmt"
	"math"
	"strings"
)

// Engine scores profile pairs with one fixed configuration. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	config Configuration
}

func NewEngine(config Configuration) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config}, nil
}

// NewEngineForMode builds an engine from one of the named configurations.
func NewEngineForMode(mode Mode) (*Engine, error) {
	cfg, err := ConfigurationFor(mode)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg)
}

func (e *Engine) Configuration() Configuration {
	return e.config
}

// Score computes the compatibility of a and b.
func (e *Engine) Score(a, b Profile) (*ScoreResult, error) {
	age, err := AnalyzeAge(a, b, e.config.AgeCurve)
	if err != nil {
		return nil, err
	}
	analyses := Analyses{
		Age:       age,
		Interests: AnalyzeInterests(a.Interests, b.Interests),
		Location:  AnalyzeLocation(a.Location, b.Location),
	}

	overall := Aggregate(analyses, e.config.Weights)

	return &ScoreResult{
		OverallScore: overall,
		Mode:         e.config.Mode,
		Factors: map[Factor]FactorResult{
			FactorAge:       analyses.Age.Factor(),
			FactorInterests: analyses.Interests.Factor(),
			FactorLocation:  analyses.Location.Factor(),
		},
		Explanation:     Explain(analyses, overall, e.config.Mode),
		Recommendations: Recommend(analyses),
	}, nil
}

// Score is a convenience wrapper around the named configuration for mode.
func Score(a, b Profile, mode Mode) (*ScoreResult, error) {
	engine, err := NewEngineForMode(mode)
	if err != nil {
		return nil, err
	}
	return engine.Score(a, b)
}

// Aggregate returns the weighted overall score in [0, 100].
func Aggregate(a Analyses, w Weights) float64 {
	total := a.Age.CompatibilityScore*w.Age*100 +
		a.Interests.CompatibilityScore*w.Interests*100 +
		a.Location.CompatibilityScore*w.Location*100
	return math.Max(0, math.Min(100, total))
}

// Explain renders the factor breakdown as text.
func Explain(a Analyses, overall float64, mode Mode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compatibility Analysis (%s mode):\n", mode)
	fmt.Fprintf(&sb, "• Age: %s (Score: %.0f/100)\n", a.Age.Reason, a.Age.CompatibilityScore*100)
	fmt.Fprintf(&sb, "• Interests: %d direct matches, %d category overlaps (Score: %.0f/100)\n",
		a.Interests.DirectMatches, a.Interests.SemanticMatches, a.Interests.CompatibilityScore*100)
	fmt.Fprintf(&sb, "• Location: %s (Score: %.0f/100)\n", a.Location.Reason, a.Location.CompatibilityScore*100)
	fmt.Fprintf(&sb, "Overall: %.1f/100", overall)
	return sb.String()
}
