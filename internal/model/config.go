package model

import "time"

// Config is the full runtime configuration, layered from defaults, the
// config file, MEDGUARD_* environment variables, and CLI flags.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
}

// LLMConfig configures the judgment model gateway
type LLMConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"` // "openai" or "ollama"
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the evidence search tiers
type SearchConfig struct {
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`       // Google Custom Search key
	EngineID   string        `yaml:"engine_id" mapstructure:"engine_id"`   // Custom Search engine id (cx)
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// HTTPConfig configures outbound evidence fetching
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxExcerptChars   int           `yaml:"max_excerpt_chars" mapstructure:"max_excerpt_chars"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ConcurrencyConfig bounds per-request parallelism
type ConcurrencyConfig struct {
	VerifyWorkers int `yaml:"verify_workers" mapstructure:"verify_workers"`
}

// ServerConfig configures the HTTP host
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// StoreConfig configures the process-lifetime report store
type StoreConfig struct {
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "",
			Timeout:   30 * time.Second,
			MaxTokens: 1000,
		},
		Search: SearchConfig{
			MaxResults: 5,
			Timeout:    10 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:           10 * time.Second,
			UserAgent:         "Medguard/0.1 (+https://github.com/deadly-nightshade/medguard)",
			MaxBodyBytes:      2_000_000,
			MaxExcerptChars:   2000,
			RequestsPerSecond: 2,
			Burst:             4,
			RespectRobots:     true,
		},
		Concurrency: ConcurrencyConfig{
			VerifyWorkers: 3,
		},
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			TTL:             24 * time.Hour,
			CleanupInterval: time.Hour,
		},
	}
}
