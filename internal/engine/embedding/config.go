package embedding

import "time"

type Config struct {
	Index         string
	NumCandidates int
	Timeout       time.Duration
}

func LoadConfig(index string) *Config {
	if index == "" {
		index = "designer_profiles"
	}
	return &Config{
		Index:         index,
		NumCandidates: 100,
		Timeout:       5 * time.Second,
	}
}
