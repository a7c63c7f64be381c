// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/andrevf/planday/internal/store"
)

type Config struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
	Log    Log    `yaml:"log"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

func Default() *Config {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "planday.db"
	}
	return &Config{
		Addr:   ":8080",
		DBPath: dbPath,
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
