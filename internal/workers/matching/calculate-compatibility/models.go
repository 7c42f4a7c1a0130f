// internal/workers/matching/calculate-compatibility/models.go
package calculatecompatibility

import (
	"encoding/json"

	"lovefi-matcher/internal/compatibility"
)

// Input carries each profile either inline or as a directory id. Inline
// wins when both are present.
type Input struct {
	ProfileA   json.RawMessage `json:"profileA,omitempty"`
	ProfileB   json.RawMessage `json:"profileB,omitempty"`
	ProfileAID string          `json:"profileAId,omitempty"`
	ProfileBID string          `json:"profileBId,omitempty"`
	Mode       string          `json:"mode,omitempty"`
}

type Output struct {
	Score                float64                                             `json:"score"`
	Explanation          string                                              `json:"explanation"`
	CompatibilityFactors map[compatibility.Factor]compatibility.FactorResult `json:"compatibilityFactors"`
	Recommendations      []string                                            `json:"recommendations"`
	Mode                 string                                              `json:"mode"`
}
