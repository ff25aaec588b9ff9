package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
// Missing credentials are not an error here: the health endpoint reports
// them, and the server is allowed to boot degraded.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	if strings.TrimSpace(cfg.OCR.APIKeyEnv) == "" {
		return errors.New("ocr.api_key_env must be set")
	}
	if strings.TrimSpace(cfg.LLM.APIKeyEnv) == "" {
		return errors.New("llm.api_key_env must be set")
	}

	if cfg.RateLimit.DailyQuota <= 0 {
		return errors.New("rate_limit.daily_quota must be positive")
	}
	switch cfg.RateLimit.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("rate_limit.store %q is not supported (memory, redis)", cfg.RateLimit.Store)
	}
	if cfg.RateLimit.Store == "redis" && strings.TrimSpace(cfg.RateLimit.Redis.Addr) == "" {
		return errors.New("rate_limit.redis.addr must be set when store is redis")
	}

	if cfg.Lookup.RequestsPerSecond <= 0 {
		return errors.New("lookup.requests_per_second must be positive")
	}

	return nil
}
