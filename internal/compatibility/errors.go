// internal/compatibility/errors.go
package compatibility

import "errors"

var (
	// ErrConfiguration is wrapped by every error the engine returns.
	ErrConfiguration = errors.New("SCORING_CONFIGURATION_INVALID")

	ErrUnknownMode         = errors.New("unknown scoring mode")
	ErrWeightsSum          = errors.New("factor weights must sum to 1")
	ErrNegativeWeight      = errors.New("factor weights must not be negative")
	ErrNegativeMaxAgeDiff  = errors.New("max_age_diff must not be negative")
	ErrUnsupportedAgeCurve = errors.New("unsupported age curve")
)

// IsConfigurationError reports whether err came from a bad scoring configuration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
