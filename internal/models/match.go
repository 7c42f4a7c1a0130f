// internal/models/match.go
package models

import (
	"fmt"

	"lovefi-matcher/internal/compatibility"
)

// MatchRequest is the flat body accepted by POST /match/calculate.
type MatchRequest struct {
	Name1        string              `json:"name1"`
	Age1         *int                `json:"age1,omitempty"`
	Interests1   []string            `json:"interests1,omitempty"`
	Location1    string              `json:"location1"`
	Preferences1 *PreferencesPayload `json:"preferences1,omitempty"`
	Name2        string              `json:"name2"`
	Age2         *int                `json:"age2,omitempty"`
	Interests2   []string            `json:"interests2,omitempty"`
	Location2    string              `json:"location2"`
	Preferences2 *PreferencesPayload `json:"preferences2,omitempty"`
}

// Profiles splits the flat request into its two profiles.
func (r MatchRequest) Profiles() (ProfilePayload, ProfilePayload) {
	return ProfilePayload{
			Name:        r.Name1,
			Age:         r.Age1,
			Interests:   r.Interests1,
			Location:    r.Location1,
			Preferences: r.Preferences1,
		}, ProfilePayload{
			Name:        r.Name2,
			Age:         r.Age2,
			Interests:   r.Interests2,
			Location:    r.Location2,
			Preferences: r.Preferences2,
		}
}

// MatchResponse answers POST /match/calculate.
type MatchResponse struct {
	Score   float64                    `json:"score"`
	Details string                     `json:"details"`
	Result  *compatibility.ScoreResult `json:"result,omitempty"`
}

// ChatText renders the one-message summary used by chat style clients.
func ChatText(nameA, nameB string, result *compatibility.ScoreResult) string {
	return fmt.Sprintf("Match Score for %s and %s: %.1f/100\nDetails: %s",
		nameA, nameB, result.OverallScore, result.Explanation)
}
