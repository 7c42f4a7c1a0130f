// internal/compatibility/recommend.go
package compatibility

import (
	"fmt"
	"strings"
)

const maxSuggestedActivities = 3

// Analyses groups the three factor results a recommendation is derived from.
type Analyses struct {
	Age       AgeAnalysis
	Interests InterestAnalysis
	Location  LocationAnalysis
}

// Recommend evaluates the recommendation rules in order. Each rule adds at
// most one sentence.
func Recommend(a Analyses) []string {
	recs := make([]string, 0, 3)

	if a.Interests.DirectMatches > 0 {
		shared := a.Interests.CommonInterests
		if len(shared) > maxSuggestedActivities {
			shared = shared[:maxSuggestedActivities]
		}
		recs = append(recs, fmt.Sprintf("Plan activities around shared interests: %s", strings.Join(shared, ", ")))
	}

	if a.Age.LifeStageMatch {
		recs = append(recs, "Your similar life stages create great potential for shared goals")
	} else {
		recs = append(recs, "Embrace the different perspectives your age difference brings")
	}

	switch a.Location.MatchType {
	case MatchExact:
		recs = append(recs, "Being in the same area makes meeting up easy - suggest local date spots")
	case MatchSameCity:
		recs = append(recs, "Explore different neighborhoods together to bridge your local differences")
	}

	return recs
}
