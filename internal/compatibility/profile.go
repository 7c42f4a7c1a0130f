// internal/compatibility/profile.go
package compatibility

const (
	DefaultAge        = 25
	DefaultMaxAgeDiff = 10
)

// Profile is a validated dating profile with defaults already applied.
type Profile struct {
	Name        string      `json:"name"`
	Age         int         `json:"age"`
	Interests   []string    `json:"interests"`
	Location    string      `json:"location"`
	Preferences Preferences `json:"preferences"`
}

type Preferences struct {
	MaxAgeDiff int `json:"max_age_diff"`
}

type Factor string

const (
	FactorAge       Factor = "age"
	FactorInterests Factor = "interests"
	FactorLocation  Factor = "location"
)

// FactorResult is the per-factor breakdown returned to callers.
type FactorResult struct {
	CompatibilityScore float64                `json:"compatibility_score"`
	Reason             string                 `json:"reason"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

type ScoreResult struct {
	OverallScore    float64                 `json:"overall_score"`
	Mode            Mode                    `json:"mode"`
	Factors         map[Factor]FactorResult `json:"factors"`
	Explanation     string                  `json:"explanation"`
	Recommendations []string                `json:"recommendations"`
}
