package matchcache

import "time"

type Config struct {
	// TTL bounds how long a cached result may serve before recompute.
	TTL time.Duration
	// KeyPrefix namespaces cache entries in a shared Redis.
	KeyPrefix string
}

func LoadConfig(ttlSeconds int) *Config {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &Config{
		TTL:       time.Duration(ttlSeconds) * time.Second,
		KeyPrefix: "match:cache:",
	}
}
