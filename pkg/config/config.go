// Package config loads service configuration from config.yaml with
// environment variable overrides. Secrets come only from the
// environment, never from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for lumora.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// LLM endpoint configuration
	LLM LLMConfig `yaml:"llm"`

	// Query execution limits
	Execution ExecutionConfig `yaml:"execution"`

	// Dataset session storage
	Storage StorageConfig `yaml:"storage"`

	// Question classification lexicon
	Semantics SemanticsConfig `yaml:"semantics"`
}

// LLMConfig holds LLM provider configuration. A single provider serves
// both SQL generation and answer phrasing; fallback models share the
// provider and are tried in order when the primary is cooling down.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" for any
	// OpenAI-compatible endpoint, or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`

	// Endpoint is the base URL for OpenAI-compatible providers.
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.groq.com/openai/v1"`

	// Model is the primary model name.
	Model string `yaml:"model" env:"LLM_MODEL" env-default:"llama-3.3-70b-versatile"`

	// FallbackModelsStr is a comma-separated list of fallback models,
	// tried in order when the primary is rate limited.
	FallbackModelsStr string `yaml:"fallback_models" env:"LLM_FALLBACK_MODELS" env-default:"llama-3.1-70b-versatile,llama-3.1-8b-instant"`

	// FallbackModels is parsed from FallbackModelsStr at load time.
	FallbackModels []string `yaml:"-"`

	// APIKey authenticates to the provider. Secret - not in YAML.
	APIKey string `yaml:"-" env:"LLM_API_KEY"`

	// CooldownSeconds is how long a rate-limited model is skipped.
	CooldownSeconds int `yaml:"cooldown_seconds" env:"LLM_COOLDOWN_SECONDS" env-default:"90"`
}

// ExecutionConfig holds the executor's resource caps.
type ExecutionConfig struct {
	// MaxRows caps the number of rows a query result may carry.
	MaxRows int `yaml:"max_rows" env:"EXECUTION_MAX_ROWS" env-default:"10000"`
	// TimeoutMS is the wall-clock limit for a single query.
	TimeoutMS int `yaml:"timeout_ms" env:"EXECUTION_TIMEOUT_MS" env-default:"2000"`
}

// Timeout returns the execution timeout as a duration.
func (c ExecutionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// StorageConfig holds dataset session storage settings.
type StorageConfig struct {
	// Dir is the root directory for session data.
	Dir string `yaml:"dir" env:"STORAGE_DIR" env-default:"./temp_data"`
	// SessionTTLHours is how long uploaded datasets are retained.
	SessionTTLHours int `yaml:"session_ttl_hours" env:"STORAGE_SESSION_TTL_HOURS" env-default:"24"`
}

// SessionTTL returns the session retention as a duration.
func (c StorageConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// SemanticsConfig holds question classification settings.
type SemanticsConfig struct {
	// LexiconPath optionally overrides the built-in concept lexicon
	// with a YAML file.
	LexiconPath string `yaml:"lexicon_path" env:"SEMANTICS_LEXICON_PATH" env-default:""`
}

// Load reads configuration from config.yaml (if present) and the
// environment, environment winning.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	cfg.parseComplexFields()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) parseComplexFields() {
	c.LLM.FallbackModels = nil
	for _, m := range strings.Split(c.LLM.FallbackModelsStr, ",") {
		if m = strings.TrimSpace(m); m != "" {
			c.LLM.FallbackModels = append(c.LLM.FallbackModels, m)
		}
	}
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLM.Provider)
	}
	if c.Execution.MaxRows <= 0 {
		return fmt.Errorf("execution.max_rows must be positive")
	}
	if c.Execution.TimeoutMS <= 0 {
		return fmt.Errorf("execution.timeout_ms must be positive")
	}
	return nil
}

// ModelPriority returns the primary model followed by fallbacks.
func (c LLMConfig) ModelPriority() []string {
	return append([]string{c.Model}, c.FallbackModels...)
}
