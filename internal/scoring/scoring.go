// Package scoring converts raw candidates into ranked, policy-tagged records
// using weighted heuristics and keyword analysis.
package scoring

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"changal24/internal/domain"
)

const (
	// bodyLengthTarget is the body length, in characters, at which the
	// substance proxy saturates.
	bodyLengthTarget = 1800

	aiMatchValue   = 10
	techMatchValue = 4

	excludedMatchPenalty  = 8
	politicalMatchPenalty = 10
	maxPenalty            = 40
)

// Result is the outcome of scoring a single candidate. It is derived data
// and never mutated after creation.
type Result struct {
	Score       int
	IsPolitical bool
	Breakdown   map[string]int
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}

func clampFloat(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Score ranks a candidate against the configured policy. It is a pure
// function: identical inputs always produce identical results, and it never
// fails — missing fields degrade to zero-effect values.
//
// A missing PublishedAt is treated as maximally fresh rather than penalized;
// that is deliberate policy for sources that omit timestamps.
func Score(c domain.Candidate, cfg Config, now time.Time) Result {
	combined := strings.ToLower(c.Title + "\n" + c.Body)

	aiMatches := countMatches(combined, cfg.AIKeywords)
	techMatches := countMatches(combined, cfg.TechKeywords)
	excludedMatches := countMatches(combined, cfg.ExcludedKeywords)
	politicalMatches := countMatches(combined, cfg.PoliticalKeywords)

	sourceWeight, ok := cfg.SourceWeights[c.Source]
	if !ok {
		sourceWeight = defaultSourceWeight
	}

	var ageMillis float64
	if c.PublishedAt != nil {
		ageMillis = math.Max(0, float64(now.Sub(*c.PublishedAt).Milliseconds()))
	}
	windowMillis := cfg.FreshnessWindowHours * float64(time.Hour.Milliseconds())
	freshnessRatio := 0.0
	if windowMillis > 0 {
		freshnessRatio = clampFloat(1-ageMillis/windowMillis, 0, 1)
	}

	bodyLengthRatio := clampFloat(float64(utf8.RuneCountInString(c.Body))/bodyLengthTarget, 0, 1)

	penalty := clampInt(excludedMatches*excludedMatchPenalty+politicalMatches*politicalMatchPenalty, 0, maxPenalty)

	sourceTerm := int(math.Round(sourceWeight * cfg.Weights.Source))
	freshnessTerm := int(math.Round(freshnessRatio * cfg.Weights.Freshness))
	aiTerm := int(math.Min(float64(aiMatches*aiMatchValue), cfg.Weights.AIKeywords))
	techTerm := int(math.Min(float64(techMatches*techMatchValue), cfg.Weights.TechKeywords))
	bodyLengthTerm := int(math.Round(bodyLengthRatio * cfg.Weights.BodyLength))

	score := sourceTerm + freshnessTerm + aiTerm + techTerm + bodyLengthTerm - penalty

	return Result{
		Score:       clampInt(score, 0, 100),
		IsPolitical: politicalMatches > 0,
		Breakdown: map[string]int{
			"source":           sourceTerm,
			"freshness":        freshnessTerm,
			"aiKeywords":       aiTerm,
			"techKeywords":     techTerm,
			"bodyLength":       bodyLengthTerm,
			"aiMatches":        aiMatches,
			"techMatches":      techMatches,
			"excludedMatches":  excludedMatches,
			"politicalMatches": politicalMatches,
			"penalty":          penalty,
		},
	}
}
