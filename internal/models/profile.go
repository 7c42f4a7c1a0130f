// internal/models/profile.go
package models

import (
	"lovefi-matcher/internal/compatibility"
)

// ProfilePayload is a profile as it arrives on the wire. Missing fields are
// nil and get their defaults in ToProfile.
type ProfilePayload struct {
	ID          string              `json:"id,omitempty"`
	Name        string              `json:"name"`
	Age         *int                `json:"age,omitempty"`
	Interests   []string            `json:"interests,omitempty"`
	Location    string              `json:"location"`
	Preferences *PreferencesPayload `json:"preferences,omitempty"`
}

type PreferencesPayload struct {
	MaxAgeDiff *int `json:"max_age_diff,omitempty"`
}

// ToProfile applies the defaults: age 25, no interests, empty location and
// a max_age_diff of 10.
func (p ProfilePayload) ToProfile() compatibility.Profile {
	profile := compatibility.Profile{
		Name:      p.Name,
		Age:       compatibility.DefaultAge,
		Interests: []string{},
		Location:  p.Location,
		Preferences: compatibility.Preferences{
			MaxAgeDiff: compatibility.DefaultMaxAgeDiff,
		},
	}

	if p.Age != nil {
		profile.Age = *p.Age
	}
	if p.Interests != nil {
		profile.Interests = append([]string(nil), p.Interests...)
	}
	if p.Preferences != nil && p.Preferences.MaxAgeDiff != nil {
		profile.Preferences.MaxAgeDiff = *p.Preferences.MaxAgeDiff
	}

	return profile
}

// IntPtr is a small helper for building payloads in code and tests.
func IntPtr(v int) *int {
	return &v
}
