// Package config loads the process's environment-derived options (spec
// §6.3): listening port, idle-room timeout, max rooms, min players, log
// level, allowed origins. An optional TOML file can override any
// default; environment variables take precedence over both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full set of process-level options.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Registry RegistryConfig `toml:"registry"`
	Room     RoomConfig     `toml:"room"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig controls the HTTP/bus listening surface.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// RegistryConfig controls room-creation limits (spec §4.8).
type RegistryConfig struct {
	MaxRooms            int `toml:"max_rooms"`
	MaxConcurrentCreate int `toml:"max_concurrent_create"`
}

// RoomConfig controls per-room defaults.
type RoomConfig struct {
	MinPlayers         int           `toml:"min_players"`
	MaxPlayers         int           `toml:"max_players"`
	IdleTimeout        time.Duration `toml:"idle_timeout"`
	ReconnectGrace     time.Duration `toml:"reconnect_grace"`
	SubmissionDeadline time.Duration `toml:"submission_deadline"`
}

// LoggingConfig controls the zap logger's verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Load builds a Config from built-in defaults, optionally overlaid by a
// TOML file at path (skipped if path is empty; a path that cannot be read
// or parsed is an error), then overridden by environment variables. Environment variables win over
// every other source, matching the "environment-derived options" spec
// §6.3 calls for.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Registry: RegistryConfig{
			MaxRooms:            200,
			MaxConcurrentCreate: 4,
		},
		Room: RoomConfig{
			MinPlayers:         3,
			MaxPlayers:         6,
			IdleTimeout:        15 * time.Minute,
			ReconnectGrace:     2 * time.Minute,
			SubmissionDeadline: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("WARLOCK_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v, ok := os.LookupEnv("WARLOCK_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("WARLOCK_MAX_ROOMS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Registry.MaxRooms = n
		}
	}
	if v, ok := os.LookupEnv("WARLOCK_MIN_PLAYERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Room.MinPlayers = n
		}
	}
	if v, ok := os.LookupEnv("WARLOCK_MAX_PLAYERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Room.MaxPlayers = n
		}
	}
	if v, ok := os.LookupEnv("WARLOCK_IDLE_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Room.IdleTimeout = d
		}
	}
	if v, ok := os.LookupEnv("WARLOCK_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}
