package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Input is the JSON-lines command file; "-" reads stdin.
	Input    string
	TickSize string
	LotSize  string
	// Depth is how many levels per side the final report prints.
	Depth    uint32
	LogLevel slog.Level
}

func Default() Config {
	return Config{
		Input:    "-",
		TickSize: "1",
		LotSize:  "1",
		Depth:    5,
		LogLevel: slog.LevelInfo,
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("OBREPLAY_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("OBREPLAY_TICK_SIZE"); v != "" {
		cfg.TickSize = v
	}
	if v := os.Getenv("OBREPLAY_LOT_SIZE"); v != "" {
		cfg.LotSize = v
	}
	if v := os.Getenv("OBREPLAY_DEPTH"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			cfg.Depth = uint32(n)
		}
	}
	if v := os.Getenv("OBREPLAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v, cfg.LogLevel)
	}

	return cfg
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return fallback
	}
	return lvl
}
