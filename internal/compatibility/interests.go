// internal/compatibility/interests.go
package compatibility

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

type interestCategory struct {
	name     string
	keywords [][]string
}

// categories is iterated in declaration order; keywords are stored tokenized.
var categories = buildCategories([]struct {
	name     string
	keywords []string
}{
	{"outdoor", []string{"hiking", "camping", "climbing", "running", "cycling", "surfing", "skiing"}},
	{"creative", []string{"art", "music", "writing", "photography", "painting", "drawing", "crafts"}},
	{"intellectual", []string{"reading", "chess", "debate", "learning", "philosophy", "science"}},
	{"social", []string{"dancing", "parties", "networking", "volunteering", "community"}},
	{"culinary", []string{"cooking", "baking", "wine", "restaurants", "food"}},
	{"fitness", []string{"gym", "yoga", "pilates", "sports", "martial arts", "crossfit"}},
	{"tech", []string{"programming", "gaming", "gadgets", "ai", "blockchain", "coding"}},
})

func buildCategories(raw []struct {
	name     string
	keywords []string
}) []interestCategory {
	out := make([]interestCategory, 0, len(raw))
	for _, r := range raw {
		c := interestCategory{name: r.name}
		for _, kw := range r.keywords {
			c.keywords = append(c.keywords, tokenize(kw))
		}
		out = append(out, c)
	}
	return out
}

// CategoryNames returns the interest categories in table order.
func CategoryNames() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

type InterestAnalysis struct {
	DirectMatches      int
	SemanticMatches    int
	TotalInterests     int
	CommonInterests    []string
	CommonCategories   []string
	CompatibilityScore float64
	Reason             string
}

func (a InterestAnalysis) Factor() FactorResult {
	return FactorResult{
		CompatibilityScore: a.CompatibilityScore,
		Reason:             a.Reason,
		Metadata: map[string]interface{}{
			"direct_matches":    a.DirectMatches,
			"semantic_matches":  a.SemanticMatches,
			"total_interests":   a.TotalInterests,
			"common_interests":  a.CommonInterests,
			"common_categories": a.CommonCategories,
		},
	}
}

// AnalyzeInterests compares two interest lists directly and by category.
func AnalyzeInterests(interestsA, interestsB []string) InterestAnalysis {
	setA := normalizeInterests(interestsA)
	setB := normalizeInterests(interestsB)

	common := make([]string, 0)
	for key := range setA {
		if _, ok := setB[key]; ok {
			common = append(common, key)
		}
	}
	sort.Strings(common)

	union := len(setA)
	for key := range setB {
		if _, ok := setA[key]; !ok {
			union++
		}
	}

	catsA := categorize(setA)
	catsB := categorize(setB)

	sharedCats := make([]string, 0)
	touched := 0
	for i, c := range categories {
		if catsA[i] || catsB[i] {
			touched++
		}
		if catsA[i] && catsB[i] {
			sharedCats = append(sharedCats, c.name)
		}
	}

	analysis := InterestAnalysis{
		DirectMatches:    len(common),
		SemanticMatches:  len(sharedCats),
		TotalInterests:   union,
		CommonInterests:  common,
		CommonCategories: sharedCats,
	}
	if touched > 0 {
		raw := float64(analysis.DirectMatches*2+analysis.SemanticMatches) / float64(touched)
		analysis.CompatibilityScore = math.Min(1.0, raw)
	}
	analysis.Reason = interestReason(analysis)
	return analysis
}

func interestReason(a InterestAnalysis) string {
	switch {
	case a.DirectMatches > 0 && a.SemanticMatches > 0:
		return fmt.Sprintf("%d shared interests across %d common categories", a.DirectMatches, a.SemanticMatches)
	case a.DirectMatches > 0:
		return fmt.Sprintf("%d shared interests", a.DirectMatches)
	case a.SemanticMatches > 0:
		return fmt.Sprintf("Similar tastes in %s", strings.Join(a.CommonCategories, ", "))
	default:
		return "No overlapping interests"
	}
}

// normalizeInterests maps each lowercased, trimmed interest to its tokens.
func normalizeInterests(interests []string) map[string][]string {
	out := make(map[string][]string, len(interests))
	for _, in := range interests {
		key := strings.ToLower(strings.TrimSpace(in))
		if key == "" {
			continue
		}
		out[key] = tokenize(key)
	}
	return out
}

// categorize returns, per table index, whether any interest belongs to it.
// Multi-word keywords claim their tokens first, so "martial arts" is not
// also read as "art".
func categorize(interests map[string][]string) []bool {
	hit := make([]bool, len(categories))
	for _, tokens := range interests {
		claimed := make([]bool, len(tokens))
		for i, c := range categories {
			for _, kw := range c.keywords {
				if len(kw) > 1 && claimPhrase(tokens, kw, claimed) {
					hit[i] = true
				}
			}
		}
		for i, c := range categories {
			if hit[i] {
				continue
			}
			for _, kw := range c.keywords {
				if len(kw) == 1 && claimPhrase(tokens, kw, claimed) {
					hit[i] = true
					break
				}
			}
		}
	}
	return hit
}

// tokenize splits s into lowercased words with simple plurals folded.
func tokenize(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		words[i] = singular(w)
	}
	return words
}

// singular folds "parties" to "party" and "arts" to "art". Words ending in
// "ss" and words of three letters or fewer are kept.
func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

// claimPhrase marks every unclaimed occurrence of phrase as consecutive whole
// tokens and reports whether there was one.
func claimPhrase(tokens, phrase []string, claimed []bool) bool {
	if len(phrase) == 0 {
		return false
	}
	found := false
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, p := range phrase {
			if claimed[i+j] || tokens[i+j] != p {
				continue outer
			}
		}
		for j := range phrase {
			claimed[i+j] = true
		}
		found = true
	}
	return found
}
