package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// SimulationConfig holds parameters for the -simulate mode.
type SimulationConfig struct {
	Players    int `json:"players"`
	Seconds    int `json:"seconds"`
	ThinkMinMS int `json:"think_min_ms"`
	ThinkMaxMS int `json:"think_max_ms"`
	Watchers   int `json:"watchers"`
}

// Config holds all configurable server parameters.
type Config struct {
	Port              int    `json:"port"`
	BoardFile         string `json:"board_file"`
	LogLevel          string `json:"log_level"` // debug, info, warn, error
	MaxPlayerIDLength int    `json:"max_player_id_length"`

	// Simulation holds configuration for the simulation harness.
	Simulation SimulationConfig `json:"simulation"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Port:              8080,
		BoardFile:         "boards/ab.txt",
		LogLevel:          "info",
		MaxPlayerIDLength: 64,
		Simulation: SimulationConfig{
			Players:    10,
			Seconds:    5,
			ThinkMinMS: 0,
			ThinkMaxMS: 10,
			Watchers:   2,
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideInt(&cfg.Port, "PORT")
	overrideString(&cfg.BoardFile, "BOARD_FILE")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideInt(&cfg.MaxPlayerIDLength, "MAX_PLAYER_ID_LENGTH")
	overrideInt(&cfg.Simulation.Players, "SIM_PLAYERS")
	overrideInt(&cfg.Simulation.Seconds, "SIM_SECONDS")
	overrideInt(&cfg.Simulation.ThinkMinMS, "SIM_THINK_MIN_MS")
	overrideInt(&cfg.Simulation.ThinkMaxMS, "SIM_THINK_MAX_MS")
	overrideInt(&cfg.Simulation.Watchers, "SIM_WATCHERS")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
