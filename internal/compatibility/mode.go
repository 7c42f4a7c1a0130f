// internal/compatibility/mode.go
package compatibility

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Mode selects a named weight set and age curve.
type Mode string

const (
	// ModeMessage is used by message-driven callers (workers, agent envelopes).
	ModeMessage Mode = "message"
	// ModeREST is used by the synchronous REST endpoint.
	ModeREST Mode = "rest"
)

type AgeCurve string

const (
	AgeCurveTiered AgeCurve = "tiered"
	AgeCurveLinear AgeCurve = "linear"
)

const weightTolerance = 1e-9

type Weights struct {
	Age       float64 `json:"age"`
	Interests float64 `json:"interests"`
	Location  float64 `json:"location"`
}

func (w Weights) Sum() float64 {
	return w.Age + w.Interests + w.Location
}

func (w Weights) Validate() error {
	if w.Age < 0 || w.Interests < 0 || w.Location < 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, ErrNegativeWeight)
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("%w: %w (got %.4f)", ErrConfiguration, ErrWeightsSum, w.Sum())
	}
	return nil
}

// Configuration is one named way of scoring a pair of profiles.
type Configuration struct {
	Mode     Mode     `json:"mode"`
	Weights  Weights  `json:"weights"`
	AgeCurve AgeCurve `json:"age_curve"`
}

func (c Configuration) Validate() error {
	if c.AgeCurve != AgeCurveTiered && c.AgeCurve != AgeCurveLinear {
		return fmt.Errorf("%w: %w %q", ErrConfiguration, ErrUnsupportedAgeCurve, c.AgeCurve)
	}
	return c.Weights.Validate()
}

var (
	MessageConfiguration = Configuration{
		Mode:     ModeMessage,
		Weights:  Weights{Age: 0.25, Interests: 0.50, Location: 0.25},
		AgeCurve: AgeCurveTiered,
	}

	RESTConfiguration = Configuration{
		Mode:     ModeREST,
		Weights:  Weights{Age: 0.30, Interests: 0.50, Location: 0.20},
		AgeCurve: AgeCurveLinear,
	}

	configurations = map[Mode]Configuration{
		ModeMessage: MessageConfiguration,
		ModeREST:    RESTConfiguration,
	}
)

// ConfigurationFor returns the named configuration for mode.
func ConfigurationFor(mode Mode) (Configuration, error) {
	cfg, ok := configurations[mode]
	if !ok {
		return Configuration{}, fmt.Errorf("%w: %w %q", ErrConfiguration, ErrUnknownMode, mode)
	}
	return cfg, nil
}

// ParseMode accepts "message" or "rest" in any case.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := configurations[mode]; !ok {
		return "", fmt.Errorf("%w: %w %q", ErrConfiguration, ErrUnknownMode, s)
	}
	return mode, nil
}

// Modes lists the named configurations in a stable order.
func Modes() []Configuration {
	out := make([]Configuration, 0, len(configurations))
	for _, cfg := range configurations {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode < out[j].Mode })
	return out
}
