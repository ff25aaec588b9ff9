package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/amr05008/glutenornot.com/internal/config"
	"github.com/amr05008/glutenornot.com/internal/lookup"
	"github.com/amr05008/glutenornot.com/internal/ocr"
	"github.com/amr05008/glutenornot.com/internal/provider"
	"github.com/amr05008/glutenornot.com/internal/ratelimit"
	"github.com/amr05008/glutenornot.com/internal/server"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "glutenornot.yaml", "Path to config file")
	flag.Parse()

	// Local development keeps credentials in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()

	var store ratelimit.Store
	switch cfg.RateLimit.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password(),
			DB:       cfg.RateLimit.Redis.DB,
		})
		store = ratelimit.NewRedisStore(client, ratelimit.DefaultWindow)
		logger.Info().Str("addr", cfg.RateLimit.Redis.Addr).Msg("rate records in redis")
	default:
		mem := ratelimit.NewMemoryStore()
		mem.StartSweep(ctx, ratelimit.DefaultWindow, time.Hour)
		store = mem
	}
	limiter := ratelimit.New(store, cfg.RateLimit.DailyQuota, ratelimit.DefaultWindow)

	srv := server.New(
		cfg,
		logger,
		buildOCR(cfg),
		buildLLM(cfg),
		buildWaterfall(cfg, logger),
		limiter,
	)

	if err := srv.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func buildOCR(cfg *config.Config) ocr.Engine {
	return ocr.NewVision(
		cfg.OCR.BaseURL,
		cfg.OCR.APIKey(),
		time.Duration(cfg.OCR.TimeoutSeconds)*time.Second,
	)
}

func buildLLM(cfg *config.Config) provider.Provider {
	return provider.NewAnthropic(
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey(),
		cfg.LLM.Model,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
	)
}

func buildWaterfall(cfg *config.Config, logger zerolog.Logger) *lookup.Waterfall {
	timeout := time.Duration(cfg.Lookup.TimeoutSeconds) * time.Second

	// Shared politeness throttle for the free product databases.
	throttle := rate.NewLimiter(rate.Limit(cfg.Lookup.RequestsPerSecond), 1)

	providers := []lookup.Provider{
		lookup.NewOpenFoodFacts(cfg.Lookup.OpenFoodFacts.BaseURL, timeout, throttle),
	}
	if p := lookup.NewUPCItemDB(cfg.Lookup.UPCItemDB.BaseURL, cfg.Lookup.UPCItemDB.APIKey(), timeout, throttle); p != nil {
		providers = append(providers, p)
	} else {
		logger.Info().Msg("upcitemdb lookup disabled, no api key")
	}
	if p := lookup.NewBarcodeSpider(cfg.Lookup.BarcodeSpider.BaseURL, cfg.Lookup.BarcodeSpider.APIKey(), timeout); p != nil {
		providers = append(providers, p)
	} else {
		logger.Info().Msg("barcodespider lookup disabled, no api key")
	}

	return lookup.NewWaterfall(logger, providers...)
}
