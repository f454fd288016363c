package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration
func Default() (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns ~/.config/ntru-token/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ntru-token", "config.yaml"), nil
}

// Load returns the defaults overlaid with the YAML file at path. An empty path
// selects DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	explicit := path != ""
	if !explicit {
		path, err = DefaultPath()
		if err != nil {
			log.Debugf("no default config location: %v", err)
			return cfg, cfg.Validate()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no config file at %s, using defaults", path)
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	log.Debugf("loaded config from %s", path)
	return cfg, nil
}
