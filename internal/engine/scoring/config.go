package scoring

import "match-engine/internal/common/config"

// Config carries the scoring weights and the experience band. Resolved once
// per process from configuration; tests construct it directly to probe
// sensitivity.
type Config struct {
	Weights              config.WeightsConfig
	ExperienceBandYears  float64
	ExperienceDecayYears float64
	SeniorityTargets     map[string]float64
}

// FromMatching builds the scorer config from the application config.
func FromMatching(mc config.MatchingConfig) *Config {
	return &Config{
		Weights:              mc.Weights,
		ExperienceBandYears:  mc.ExperienceBandYears,
		ExperienceDecayYears: mc.ExperienceDecayYears,
		SeniorityTargets:     mc.SeniorityTargets,
	}
}

// targetYears maps a brief's implied seniority to the center of the
// experience band. Unknown or empty seniority centers on mid level.
func (c *Config) targetYears(seniority string) float64 {
	if t, ok := c.SeniorityTargets[seniority]; ok {
		return t
	}
	if t, ok := c.SeniorityTargets["mid"]; ok {
		return t
	}
	return 5
}
