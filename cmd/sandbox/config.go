package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// config is read from the environment; flags override it in main.
type config struct {
	LogLevel  string  `env:"FPS_LOG_LEVEL" envDefault:"info"`
	LogFormat string  `env:"FPS_LOG_FORMAT" envDefault:"console"`
	PrefabDir string  `env:"FPS_PREFAB_DIR" envDefault:"prefabs"`
	Terrain   string  `env:"FPS_TERRAIN" envDefault:"terrain.yaml"`
	TPS       int     `env:"FPS_TPS" envDefault:"60"`
	Watch     bool    `env:"FPS_WATCH" envDefault:"true"`
	Scale     float64 `env:"FPS_SCALE" envDefault:"24"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("sandbox: parse env: %w", err)
	}
	if cfg.TPS <= 0 {
		return config{}, fmt.Errorf("sandbox: FPS_TPS must be positive, got %d", cfg.TPS)
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 24
	}
	return cfg, nil
}
