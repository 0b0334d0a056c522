package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Matching MatchingConfig `mapstructure:"matching"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds, overall findMatch deadline
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Specific Configuration Sections ---

// GenAIConfig holds settings for the Gemini-backed reasoning and embedding calls.
type GenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	Timeout        int    `mapstructure:"timeout"`     // milliseconds, per attempt
	MaxRetries     int    `mapstructure:"max_retries"` // transient errors only
}

// MatchingConfig is the single strategy object resolved once per request.
// Weights and the experience band are configuration, not constants, so tests
// can probe sensitivity.
type MatchingConfig struct {
	TopK                 int                `mapstructure:"top_k"`
	Weights              WeightsConfig      `mapstructure:"weights"`
	ExperienceBandYears  float64            `mapstructure:"experience_band_years"`
	ExperienceDecayYears float64            `mapstructure:"experience_decay_years"`
	SeniorityTargets     map[string]float64 `mapstructure:"seniority_targets"`
	CacheTTL             int                `mapstructure:"cache_ttl"` // seconds
}

// WeightsConfig holds the scoring weights; they must sum to 1.0.
type WeightsConfig struct {
	Similarity float64 `mapstructure:"similarity"`
	Experience float64 `mapstructure:"experience"`
	Style      float64 `mapstructure:"style"`
	Industry   float64 `mapstructure:"industry"`
}

func (w WeightsConfig) Sum() float64 {
	return w.Similarity + w.Experience + w.Style + w.Industry
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
