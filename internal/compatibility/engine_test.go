// internal/compatibility/engine_test.go
package compatibility

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newProfile(name string, age int, location string, interests ...string) Profile {
	return Profile{
		Name:        name,
		Age:         age,
		Interests:   interests,
		Location:    location,
		Preferences: Preferences{MaxAgeDiff: DefaultMaxAgeDiff},
	}
}

// ==========================
// Scenario Tests
// ==========================

func TestScore_RESTScenario_PerfectMatch(t *testing.T) {
	alice := newProfile("Alice", 25, "New York", "hiking", "reading")
	bob := newProfile("Bob", 25, "New York", "hiking", "music")

	result, err := Score(alice, bob, ModeREST)

	require.NoError(t, err)
	assert.Equal(t, ModeREST, result.Mode)
	assert.InDelta(t, 100.0, result.OverallScore, 1e-9)

	age := result.Factors[FactorAge]
	assert.Equal(t, 0, age.Metadata["age_difference"])
	assert.InDelta(t, 1.0, age.CompatibilityScore, 1e-9)

	interests := result.Factors[FactorInterests]
	assert.Equal(t, 1, interests.Metadata["direct_matches"])
	assert.Equal(t, []string{"hiking"}, interests.Metadata["common_interests"])
	assert.InDelta(t, 1.0, interests.CompatibilityScore, 1e-9)

	location := result.Factors[FactorLocation]
	assert.Equal(t, "exact", location.Metadata["match_type"])
	assert.InDelta(t, 1.0, location.CompatibilityScore, 1e-9)
}

func TestScore_MessageScenario_LargeAgeGap(t *testing.T) {
	a := newProfile("A", 30, "Chicago")
	b := newProfile("B", 50, "Chicago")

	result, err := Score(a, b, ModeMessage)

	require.NoError(t, err)
	age := result.Factors[FactorAge]
	assert.InDelta(t, 0.2, age.CompatibilityScore, 1e-9)
	assert.Equal(t, 20, age.Metadata["age_difference"])

	contribution := age.CompatibilityScore * MessageConfiguration.Weights.Age * 100
	assert.InDelta(t, 5.0, contribution, 1e-9)
}

func TestScore_MessageMode_Totals(t *testing.T) {
	a := newProfile("A", 28, "Brooklyn, New York", "hiking", "cooking", "chess")
	b := newProfile("B", 31, "Manhattan, New York", "climbing", "cooking")

	result, err := Score(a, b, ModeMessage)
	require.NoError(t, err)

	// age diff 3 -> 0.8; location same_city -> 0.8
	// interests: direct 1 (cooking); categories A={outdoor,culinary,intellectual}
	// B={outdoor,culinary} -> semantic 2, union 3 -> (2+2)/3 clamped to 1
	expected := 0.8*25 + 1.0*50 + 0.8*25
	assert.InDelta(t, expected, result.OverallScore, 1e-9)
	assert.Equal(t, []string{
		"Plan activities around shared interests: cooking",
		"Your similar life stages create great potential for shared goals",
		"Explore different neighborhoods together to bridge your local differences",
	}, result.Recommendations)
}

func TestScore_ExplanationMentionsEveryFactor(t *testing.T) {
	result, err := Score(newProfile("A", 25, "Austin, Texas", "yoga"), newProfile("B", 40, "Dallas, Texas", "gym"), ModeMessage)
	require.NoError(t, err)

	assert.Contains(t, result.Explanation, "Compatibility Analysis (message mode)")
	assert.Contains(t, result.Explanation, "• Age: Significant age gap")
	assert.Contains(t, result.Explanation, "• Interests: 0 direct matches, 1 category overlaps (Score: 100/100)")
	assert.Contains(t, result.Explanation, "• Location: Same state (texas)")
	assert.Contains(t, result.Explanation, "Overall:")
}

// ==========================
// Configuration Tests
// ==========================

func TestNamedConfigurations_AreValid(t *testing.T) {
	for _, cfg := range Modes() {
		t.Run(string(cfg.Mode), func(t *testing.T) {
			assert.NoError(t, cfg.Validate())
			assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)
		})
	}
}

func TestNamedConfigurations_AreDistinct(t *testing.T) {
	assert.Equal(t, Weights{Age: 0.25, Interests: 0.50, Location: 0.25}, MessageConfiguration.Weights)
	assert.Equal(t, AgeCurveTiered, MessageConfiguration.AgeCurve)
	assert.Equal(t, Weights{Age: 0.30, Interests: 0.50, Location: 0.20}, RESTConfiguration.Weights)
	assert.Equal(t, AgeCurveLinear, RESTConfiguration.AgeCurve)
}

func TestNewEngine_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		config Configuration
		target error
	}{
		{
			name:   "weights below one",
			config: Configuration{Mode: "custom", Weights: Weights{Age: 0.2, Interests: 0.2, Location: 0.2}, AgeCurve: AgeCurveTiered},
			target: ErrWeightsSum,
		},
		{
			name:   "negative weight",
			config: Configuration{Mode: "custom", Weights: Weights{Age: -0.5, Interests: 1.0, Location: 0.5}, AgeCurve: AgeCurveTiered},
			target: ErrNegativeWeight,
		},
		{
			name:   "unknown age curve",
			config: Configuration{Mode: "custom", Weights: MessageConfiguration.Weights, AgeCurve: "exponential"},
			target: ErrUnsupportedAgeCurve,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.config)
			assert.Nil(t, engine)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestScore_UnknownMode(t *testing.T) {
	_, err := Score(newProfile("A", 25, ""), newProfile("B", 25, ""), Mode("chat"))
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.True(t, IsConfigurationError(err))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"message", ModeMessage, false},
		{"REST", ModeREST, false},
		{"  rest ", ModeREST, false},
		{"", "", true},
		{"grpc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Property Tests
// ==========================

func TestScore_OverallWithinBounds(t *testing.T) {
	interestSets := [][]string{
		nil,
		{"hiking"},
		{"hiking", "camping", "climbing"},
		{"knitting", "stamps"},
		{"Art", "Music", "Yoga", "Coding", "Wine", "Chess", "Dancing"},
	}
	locations := []string{"", "New York", "Austin, Texas", "Paris", "chicago"}
	ages := []int{0, 18, 25, 40, 99}

	for _, mode := range []Mode{ModeMessage, ModeREST} {
		for i, ia := range interestSets {
			for j, ib := range interestSets {
				a := newProfile("A", ages[i], locations[j], ia...)
				b := newProfile("B", ages[j], locations[i], ib...)

				result, err := Score(a, b, mode)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, result.OverallScore, 0.0)
				assert.LessOrEqual(t, result.OverallScore, 100.0)
				for factor, fr := range result.Factors {
					assert.GreaterOrEqual(t, fr.CompatibilityScore, 0.0, factor)
					assert.LessOrEqual(t, fr.CompatibilityScore, 1.0, factor)
				}
			}
		}
	}
}

func TestScore_Symmetric(t *testing.T) {
	a := newProfile("A", 27, "Houston, Texas", "Running", "baking", "ai")
	b := newProfile("B", 35, "Austin, Texas", "cycling", "Baking")

	for _, mode := range []Mode{ModeMessage, ModeREST} {
		ab, err := Score(a, b, mode)
		require.NoError(t, err)
		ba, err := Score(b, a, mode)
		require.NoError(t, err)
		assert.InDelta(t, ab.OverallScore, ba.OverallScore, 1e-9)
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	engine, err := NewEngineForMode(ModeMessage)
	require.NoError(t, err)

	a := newProfile("A", 29, "Phoenix", "hiking", "wine")
	b := newProfile("B", 33, "Phoenix", "hiking", "cooking")
	want, err := engine.Score(a, b)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := engine.Score(a, b)
			assert.NoError(t, err)
			assert.Equal(t, want.OverallScore, got.OverallScore)
		}()
	}
	wg.Wait()
}

func TestRecommend_NoSharedInterestsDifferentRegions(t *testing.T) {
	result, err := Score(newProfile("A", 22, "Miami"), newProfile("B", 45, "Seattle"), ModeMessage)
	require.NoError(t, err)

	assert.Equal(t, []string{"Embrace the different perspectives your age difference brings"}, result.Recommendations)
}

func TestRecommend_LimitsSharedActivities(t *testing.T) {
	shared := []string{"yoga", "chess", "wine", "art", "gym"}
	recs := Recommend(Analyses{
		Interests: AnalyzeInterests(shared, shared),
		Age:       AgeAnalysis{LifeStageMatch: true},
		Location:  LocationAnalysis{MatchType: MatchExact},
	})

	require.Len(t, recs, 3)
	assert.Equal(t, "Plan activities around shared interests: art, chess, gym", recs[0])
	assert.Equal(t, "Being in the same area makes meeting up easy - suggest local date spots", recs[2])
}
