package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/typeclash/typeclash-backend/internal/game"
)

// Config is the full process configuration, sourced from the
// environment with a .env file as an optional local override.
type Config struct {
	Addr     string
	LogLevel string

	Rules               game.Rules
	MinToStartMatch     int
	MatchmakingInterval time.Duration
}

// Load reads .env if present, then the environment, falling back to
// the shipped defaults.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg := Config{
		Addr:                getString("ADDR", ":8080"),
		LogLevel:            getString("LOG_LEVEL", "info"),
		Rules:               game.DefaultRules(),
		MinToStartMatch:     2,
		MatchmakingInterval: 2 * time.Second,
	}

	var err error
	if cfg.Rules.Capacity, err = getInt("SESSION_CAPACITY", cfg.Rules.Capacity); err != nil {
		return Config{}, err
	}
	if cfg.Rules.CountdownSeconds, err = getInt("MATCH_COUNTDOWN_SECONDS", cfg.Rules.CountdownSeconds); err != nil {
		return Config{}, err
	}
	if cfg.Rules.ClockSeconds, err = getInt("GAME_CLOCK_SECONDS", cfg.Rules.ClockSeconds); err != nil {
		return Config{}, err
	}
	if cfg.MinToStartMatch, err = getInt("MATCHMAKING_MIN_PLAYERS", cfg.MinToStartMatch); err != nil {
		return Config{}, err
	}
	secs, err := getInt("MATCHMAKING_CHECK_SECONDS", int(cfg.MatchmakingInterval.Seconds()))
	if err != nil {
		return Config{}, err
	}
	cfg.MatchmakingInterval = time.Duration(secs) * time.Second
	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
