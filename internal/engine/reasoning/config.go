package reasoning

import "time"

type Config struct {
	// Timeout bounds each individual AI attempt.
	Timeout time.Duration
	// MaxRetries counts extra attempts after the first, transient errors only.
	MaxRetries int
	// Backoff holds the delay before each retry. Injectable so tests
	// don't sleep.
	Backoff []time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    4 * time.Second,
		MaxRetries: 2,
		Backoff:    []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond},
	}
}

// backoffFor returns the delay before retry attempt n (1-based). The last
// configured delay repeats if the retry budget exceeds the schedule.
func (c *Config) backoffFor(n int) time.Duration {
	if len(c.Backoff) == 0 {
		return 0
	}
	if n > len(c.Backoff) {
		return c.Backoff[len(c.Backoff)-1]
	}
	return c.Backoff[n-1]
}
