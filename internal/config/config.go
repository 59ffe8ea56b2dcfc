package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ordinal-quest-service/internal/app"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ClientOrigin string `yaml:"clientOrigin"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Game struct {
		Rounds      int    `yaml:"rounds"`
		RoundTime   string `yaml:"roundTime"`
		Tick        string `yaml:"tick"`
		ReadyDelay  string `yaml:"readyDelay"`
		SettleDelay string `yaml:"settleDelay"`
	} `yaml:"game"`
	History struct {
		DefaultLimit int `yaml:"defaultLimit"`
		MaxLimit     int `yaml:"maxLimit"`
	} `yaml:"history"`
}

// LoadEnv reads KEY=VALUE pairs from .env files into the process environment.
// Variables already set win; missing files are ignored.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg.withEnv(), nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg.withEnv(), nil
}

func (c Config) withEnv() Config {
	if v := os.Getenv("LOG_LEVEL"); v != "" && c.Log.Level == "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CLIENT_ORIGIN"); v != "" && c.Server.ClientOrigin == "" {
		c.Server.ClientOrigin = v
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.ClientOrigin == "" {
		c.Server.ClientOrigin = "*"
	}
	return c
}

// GameConfig converts the game section, falling back to the default for each unset field.
func (c Config) GameConfig() app.GameConfig {
	def := app.DefaultGameConfig()
	rounds := c.Game.Rounds
	if rounds <= 0 {
		rounds = def.Rounds
	}
	return app.GameConfig{
		Rounds:      rounds,
		RoundTime:   TTLDuration(c.Game.RoundTime, def.RoundTime),
		Tick:        TTLDuration(c.Game.Tick, def.Tick),
		ReadyDelay:  TTLDuration(c.Game.ReadyDelay, def.ReadyDelay),
		SettleDelay: TTLDuration(c.Game.SettleDelay, def.SettleDelay),
	}
}

// ServiceConfig assembles the session service settings.
func (c Config) ServiceConfig() app.ServiceConfig {
	return app.ServiceConfig{
		Game:                c.GameConfig(),
		DefaultHistoryLimit: c.History.DefaultLimit,
		MaxHistoryLimit:     c.History.MaxLimit,
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
