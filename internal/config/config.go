// Package config loads glutenornot configuration from a YAML file.
// Credentials are never stored in the file itself; the file names the
// environment variables that carry them.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds glutenornot configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OCR       OCRConfig       `yaml:"ocr"`
	LLM       LLMConfig       `yaml:"llm"`
	Lookup    LookupConfig    `yaml:"lookup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
}

type OCRConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"` // e.g. "GOOGLE_CLOUD_VISION_API_KEY"
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// APIKey resolves the OCR credential from the environment.
func (c OCRConfig) APIKey() string { return os.Getenv(c.APIKeyEnv) }

type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"` // e.g. "ANTHROPIC_API_KEY"
	Model          string `yaml:"model"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// APIKey resolves the LLM credential from the environment.
func (c LLMConfig) APIKey() string { return os.Getenv(c.APIKeyEnv) }

type LookupConfig struct {
	// RequestsPerSecond throttles outbound calls to the free product
	// databases, per their usage guidelines.
	RequestsPerSecond float64               `yaml:"requests_per_second"`
	TimeoutSeconds    int                   `yaml:"timeout_seconds"`
	OpenFoodFacts     LookupProviderConfig  `yaml:"openfoodfacts"`
	UPCItemDB         LookupProviderConfig  `yaml:"upcitemdb"`
	BarcodeSpider     LookupProviderConfig  `yaml:"barcodespider"`
}

type LookupProviderConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"` // empty or unset env disables the provider
}

// APIKey resolves the provider credential from the environment.
func (c LookupProviderConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

type RateLimitConfig struct {
	DailyQuota int         `yaml:"daily_quota"`
	Store      string      `yaml:"store"` // "memory" (single instance) or "redis"
	Redis      RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
}

// Password resolves the Redis credential from the environment.
func (c RedisConfig) Password() string {
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // zerolog level name
	Pretty bool   `yaml:"pretty"` // console writer for local development
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	if cfg.OCR.APIKeyEnv == "" {
		cfg.OCR.APIKeyEnv = "GOOGLE_CLOUD_VISION_API_KEY"
	}
	if cfg.OCR.TimeoutSeconds <= 0 {
		cfg.OCR.TimeoutSeconds = 30
	}

	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "claude-sonnet-4-20250514"
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		cfg.LLM.TimeoutSeconds = 30
	}

	if cfg.Lookup.RequestsPerSecond <= 0 {
		cfg.Lookup.RequestsPerSecond = 10
	}
	if cfg.Lookup.TimeoutSeconds <= 0 {
		cfg.Lookup.TimeoutSeconds = 10
	}
	if cfg.Lookup.UPCItemDB.APIKeyEnv == "" {
		cfg.Lookup.UPCItemDB.APIKeyEnv = "UPCITEMDB_API_KEY"
	}
	if cfg.Lookup.BarcodeSpider.APIKeyEnv == "" {
		cfg.Lookup.BarcodeSpider.APIKeyEnv = "BARCODE_SPIDER_API_KEY"
	}

	if cfg.RateLimit.DailyQuota <= 0 {
		cfg.RateLimit.DailyQuota = 50
	}
	if cfg.RateLimit.Store == "" {
		cfg.RateLimit.Store = "memory"
	}
	if cfg.RateLimit.Redis.Addr == "" {
		cfg.RateLimit.Redis.Addr = "localhost:6379"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
