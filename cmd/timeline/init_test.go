package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestInit_WritesLoadableConfig(t *testing.T) {
	repoRoot := t.TempDir()
	configPath := filepath.Join(repoRoot, defaultConfigPath)

	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", "--config", configPath, "--env-file", ""})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), "timeline initialized successfully") {
		t.Fatalf("init output = %q", out.String())
	}

	viper.Reset()
	viper.Set("config", defaultConfigPath)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if cfg.View.Mode != "Day" {
		t.Fatalf("view.mode = %q, want %q", cfg.View.Mode, "Day")
	}
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	repoRoot := t.TempDir()
	configPath := filepath.Join(repoRoot, defaultConfigPath)
	if err := writeTestFile(configPath, `{"view": {"mode": "Week"}}`); err != nil {
		t.Fatalf("write config: %v", err)
	}

	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", "--config", configPath, "--env-file", ""})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	viper.Reset()
	viper.Set("config", defaultConfigPath)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.View.Mode != "Week" {
		t.Fatalf("view.mode = %q, want %q", cfg.View.Mode, "Week")
	}
}
