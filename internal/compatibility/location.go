// internal/compatibility/location.go
package compatibility

import (
	"fmt"
	"strings"
)

type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchSameCity  MatchType = "same_city"
	MatchSameState MatchType = "same_state"
	MatchDifferent MatchType = "different"
)

var (
	majorCities = []string{"new york", "los angeles", "chicago", "houston", "phoenix", "philadelphia"}
	states      = []string{"california", "texas", "florida", "new york", "illinois"}
)

type LocationAnalysis struct {
	MatchType          MatchType
	Region             string
	CompatibilityScore float64
	Reason             string
}

func (a LocationAnalysis) Factor() FactorResult {
	meta := map[string]interface{}{"match_type": string(a.MatchType)}
	if a.Region != "" {
		meta["region"] = a.Region
	}
	return FactorResult{
		CompatibilityScore: a.CompatibilityScore,
		Reason:             a.Reason,
		Metadata:           meta,
	}
}

// AnalyzeLocation compares two free-text locations. City names are checked
// before state names.
func AnalyzeLocation(locationA, locationB string) LocationAnalysis {
	a := strings.ToLower(strings.TrimSpace(locationA))
	b := strings.ToLower(strings.TrimSpace(locationB))

	if a == b {
		return LocationAnalysis{
			MatchType:          MatchExact,
			CompatibilityScore: 1.0,
			Reason:             "Same location - easy to meet",
		}
	}

	if city := sharedEntry(majorCities, a, b); city != "" {
		return LocationAnalysis{
			MatchType:          MatchSameCity,
			Region:             city,
			CompatibilityScore: 0.8,
			Reason:             fmt.Sprintf("Same metropolitan area (%s) - manageable distance", city),
		}
	}

	if state := sharedEntry(states, a, b); state != "" {
		return LocationAnalysis{
			MatchType:          MatchSameState,
			Region:             state,
			CompatibilityScore: 0.4,
			Reason:             fmt.Sprintf("Same state (%s) - possible for long-distance", state),
		}
	}

	return LocationAnalysis{
		MatchType:          MatchDifferent,
		CompatibilityScore: 0.1,
		Reason:             "Different regions - long-distance challenges",
	}
}

func sharedEntry(table []string, a, b string) string {
	for _, entry := range table {
		if strings.Contains(a, entry) && strings.Contains(b, entry) {
			return entry
		}
	}
	return ""
}
