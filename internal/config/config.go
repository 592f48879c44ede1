// Package config loads engine configuration: model registrations,
// per-provider rate limits, tracing, and default aggregation strategy.
// Loading follows the teacher's two-layer split: a YAML file for the bulk
// of the structure, then environment variables (optionally from a .env
// file) layered on top for secrets and per-deployment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModelConfig registers one chat or embedding model.
type ModelConfig struct {
	ID       string `yaml:"id"`
	Provider string `yaml:"provider"` // provider name, shared by the rate limiter bucket
	Backend  string `yaml:"backend"`  // "anthropic" | "openai"; evalctl treats any other value as "openai"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// RateLimitConfig configures one provider's token bucket.
type RateLimitConfig struct {
	Provider string `yaml:"provider"`
	RPS      int    `yaml:"rps"`
	Strategy string `yaml:"strategy"` // "wait" | "reject"
	TimeoutS int    `yaml:"timeout_seconds"`
}

// ObsConfig controls OpenTelemetry tracing.
type ObsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	OTLP        string `yaml:"otlp_endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// Config is the engine's top-level configuration.
type Config struct {
	ChatModels       []ModelConfig     `yaml:"chat_models"`
	EmbeddingModels  []ModelConfig     `yaml:"embedding_models"`
	DefaultChatModel string            `yaml:"default_chat_model"`
	RateLimits       []RateLimitConfig `yaml:"rate_limits"`
	Aggregation      string            `yaml:"aggregation"` // average|min|max|median
	LogLevel         string            `yaml:"log_level"`
	Obs              ObsConfig         `yaml:"otel"`
}

// LoadFile reads configuration from a YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// Load reads configuration from environment variables, optionally loading a
// .env file first (.env values override the process environment, mirroring
// the teacher's deterministic-local-dev behavior).
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Config{
		DefaultChatModel: strings.TrimSpace(os.Getenv("EVAL_DEFAULT_CHAT_MODEL")),
		Aggregation:      strings.TrimSpace(os.Getenv("EVAL_AGGREGATION")),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
	}
	cfg.Obs.ServiceName = strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME"))
	cfg.Obs.OTLP = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	cfg.Obs.Enabled = cfg.Obs.OTLP != ""
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); v != "" {
		cfg.Obs.Insecure = strings.EqualFold(v, "true") || v == "1"
	}

	if anthropicKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); anthropicKey != "" {
		cfg.ChatModels = append(cfg.ChatModels, ModelConfig{
			ID:       firstNonEmpty(os.Getenv("ANTHROPIC_MODEL_ID"), "anthropic-default"),
			Provider: "anthropic",
			Backend:  "anthropic",
			Model:    strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL")),
			APIKey:   anthropicKey,
			BaseURL:  strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")),
		})
	}
	if openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); openaiKey != "" {
		cfg.ChatModels = append(cfg.ChatModels, ModelConfig{
			ID:       firstNonEmpty(os.Getenv("OPENAI_MODEL_ID"), "openai-default"),
			Provider: "openai",
			Backend:  "openai",
			Model:    strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
			APIKey:   openaiKey,
			BaseURL:  strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		})
		cfg.EmbeddingModels = append(cfg.EmbeddingModels, ModelConfig{
			ID:       firstNonEmpty(os.Getenv("OPENAI_EMBEDDING_MODEL_ID"), "openai-embedding-default"),
			Provider: "openai",
			Backend:  "openai",
			Model:    strings.TrimSpace(os.Getenv("OPENAI_EMBEDDING_MODEL")),
			APIKey:   openaiKey,
			BaseURL:  strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		})
	}

	for _, provider := range []string{"anthropic", "openai"} {
		prefix := strings.ToUpper(provider) + "_RATE_LIMIT_"
		rps := strings.TrimSpace(os.Getenv(prefix + "RPS"))
		if rps == "" {
			continue
		}
		n, err := strconv.Atoi(rps)
		if err != nil {
			return Config{}, fmt.Errorf("config: %sRPS: %w", prefix, err)
		}
		rl := RateLimitConfig{Provider: provider, RPS: n, Strategy: "wait"}
		if s := strings.TrimSpace(os.Getenv(prefix + "STRATEGY")); s != "" {
			rl.Strategy = s
		}
		if t := strings.TrimSpace(os.Getenv(prefix + "TIMEOUT_SECONDS")); t != "" {
			if secs, err := strconv.Atoi(t); err == nil {
				rl.TimeoutS = secs
			}
		}
		cfg.RateLimits = append(cfg.RateLimits, rl)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Aggregation == "" {
		cfg.Aggregation = "average"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
