package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metalagman/timeline/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default timeline config",
		Long:  "Initialize a timeline project by creating the .timeline directory and installing a default config.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repoRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			configPath := resolveConfigPath(repoRoot, cmd.Flag("config").Value.String())
			if _, err := os.Stat(configPath); err == nil {
				log.Info().Str("path", configPath).Msg("config already exists, skipping")
				return nil
			}

			log.Info().Str("path", configPath).Msg("installing default config")
			if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			data, err := json.MarshalIndent(config.Defaults(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal default config: %w", err)
			}
			if err := os.WriteFile(configPath, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write default config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "timeline initialized successfully")
			return nil
		},
	}
}
