package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metalagman/timeline/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var defaultConfigPath = filepath.Join(".timeline", "config.json")

// resolveConfigPath anchors path at repoRoot. When the default JSON file is
// missing, a YAML file next to it is used instead.
func resolveConfigPath(repoRoot, path string) string {
	if path == "" {
		path = defaultConfigPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	if _, err := os.Stat(path); err == nil || filepath.Ext(path) != ".json" {
		return path
	}
	for _, ext := range []string{".yaml", ".yml"} {
		alt := strings.TrimSuffix(path, ".json") + ext
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return path
}

// loadConfig merges built-in defaults, the config file if present and
// TIMELINE_* environment overrides.
func loadConfig(repoRoot string) (config.Config, error) {
	for section, values := range config.Defaults() {
		for key, value := range values.(map[string]any) {
			viper.SetDefault(section+"."+key, value)
		}
	}

	path := resolveConfigPath(repoRoot, viper.GetString("config"))
	if _, err := os.Stat(path); err == nil {
		if err := validateFile(path); err != nil {
			return config.Config{}, err
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, fmt.Errorf("stat config: %w", err)
	} else {
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// validateFile checks the raw file against the schema before defaults and
// environment values are merged in.
func validateFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := config.ValidateSettings(v.AllSettings()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
