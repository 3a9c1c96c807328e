package scoring

import (
	"encoding/json"
	"os"
)

const (
	configJSONEnv = "SCORING_CONFIG_JSON"
	configPathEnv = "SCORING_CONFIG_PATH"

	defaultConfigPath = "config/scoring.json"

	// defaultSourceWeight applies when a source has no configured multiplier.
	defaultSourceWeight = 0.5

	defaultFreshnessWindowHours = 72
)

// Weights holds the maximum contribution of each scoring component.
// All values must be non-negative.
type Weights struct {
	Source       float64 `json:"source"`
	Freshness    float64 `json:"freshness"`
	AIKeywords   float64 `json:"aiKeywords"`
	TechKeywords float64 `json:"techKeywords"`
	BodyLength   float64 `json:"bodyLength"`
}

// Config drives the scoring engine. It is immutable per scoring call and
// loaded once per job invocation.
type Config struct {
	Weights              Weights            `json:"weights"`
	SourceWeights        map[string]float64 `json:"sourceWeights"`
	FreshnessWindowHours float64            `json:"freshnessWindowHours"`
	AIKeywords           []string           `json:"aiKeywords"`
	TechKeywords         []string           `json:"techKeywords"`
	ExcludedKeywords     []string           `json:"excludedKeywords"`
	PoliticalKeywords    []string           `json:"politicalKeywords"`
}

// DefaultConfig returns the built-in scoring policy.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Source:       25,
			Freshness:    25,
			AIKeywords:   30,
			TechKeywords: 10,
			BodyLength:   10,
		},
		SourceWeights: map[string]float64{
			"telegram_s": 1,
		},
		FreshnessWindowHours: defaultFreshnessWindowHours,
		AIKeywords: []string{
			"ai", "artificial intelligence", "openai", "anthropic", "claude",
			"gpt", "gemini", "llm", "model", "inference", "agent", "agents",
			"deepseek", "mistral", "perplexity", "cursor", "copilot",
		},
		TechKeywords: []string{
			"software", "developer", "api", "cloud", "security",
			"cybersecurity", "chip", "gpu", "launch", "release",
		},
		ExcludedKeywords: []string{
			"election", "senate", "president", "war", "military",
			"crime", "murder", "arrest", "police", "court",
		},
		PoliticalKeywords: []string{
			"government", "minister", "congress", "parliament",
			"sanction", "campaign", "politics", "political",
		},
	}
}

// overlay mirrors Config with optional fields so a partial override source
// only replaces what it mentions.
type overlay struct {
	Weights *struct {
		Source       *float64 `json:"source"`
		Freshness    *float64 `json:"freshness"`
		AIKeywords   *float64 `json:"aiKeywords"`
		TechKeywords *float64 `json:"techKeywords"`
		BodyLength   *float64 `json:"bodyLength"`
	} `json:"weights"`
	SourceWeights        map[string]float64 `json:"sourceWeights"`
	FreshnessWindowHours *float64           `json:"freshnessWindowHours"`
	AIKeywords           []string           `json:"aiKeywords"`
	TechKeywords         []string           `json:"techKeywords"`
	ExcludedKeywords     []string           `json:"excludedKeywords"`
	PoliticalKeywords    []string           `json:"politicalKeywords"`
}

func applyOverlay(base Config, raw []byte) Config {
	var o overlay
	if err := json.Unmarshal(raw, &o); err != nil {
		return base
	}

	if o.Weights != nil {
		if o.Weights.Source != nil {
			base.Weights.Source = *o.Weights.Source
		}
		if o.Weights.Freshness != nil {
			base.Weights.Freshness = *o.Weights.Freshness
		}
		if o.Weights.AIKeywords != nil {
			base.Weights.AIKeywords = *o.Weights.AIKeywords
		}
		if o.Weights.TechKeywords != nil {
			base.Weights.TechKeywords = *o.Weights.TechKeywords
		}
		if o.Weights.BodyLength != nil {
			base.Weights.BodyLength = *o.Weights.BodyLength
		}
	}
	for source, weight := range o.SourceWeights {
		if base.SourceWeights == nil {
			base.SourceWeights = map[string]float64{}
		}
		base.SourceWeights[source] = weight
	}
	if o.FreshnessWindowHours != nil {
		base.FreshnessWindowHours = *o.FreshnessWindowHours
	}
	if o.AIKeywords != nil {
		base.AIKeywords = o.AIKeywords
	}
	if o.TechKeywords != nil {
		base.TechKeywords = o.TechKeywords
	}
	if o.ExcludedKeywords != nil {
		base.ExcludedKeywords = o.ExcludedKeywords
	}
	if o.PoliticalKeywords != nil {
		base.PoliticalKeywords = o.PoliticalKeywords
	}
	return base
}

// LoadConfig resolves the scoring configuration: defaults, optionally merged
// with SCORING_CONFIG_JSON or a JSON file at SCORING_CONFIG_PATH. Unreadable
// or malformed overrides fall back to the defaults silently; loading never
// fails.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if raw := os.Getenv(configJSONEnv); raw != "" {
		return applyOverlay(cfg, []byte(raw))
	}

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = defaultConfigPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	return applyOverlay(cfg, raw)
}
