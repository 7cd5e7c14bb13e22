package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/metalagman/timeline/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TIMELINE"

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		debug   bool
		envFile string
	)
	rootCmd := &cobra.Command{
		Use:           "timeline",
		Short:         "timeline computes and edits Gantt task collections",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with TIMELINE_* overrides")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := viper.BindPFlag("config", cmd.Flags().Lookup("config")); err != nil {
			return fmt.Errorf("bind config flag: %w", err)
		}
		logging.Init(debug)
		return initEnv(envFile)
	}

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(rangeCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	return rootCmd
}

// initEnv loads the dotenv file, if any, and enables TIMELINE_* overrides
// such as TIMELINE_VIEW_MODE for view.mode.
func initEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
