package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/metalagman/timeline/internal/config"
	"github.com/metalagman/timeline/internal/document"
	"github.com/metalagman/timeline/internal/planner"
	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/task"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func repoConfig() (config.Config, error) {
	repoRoot, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	return loadConfig(repoRoot)
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("input file is required")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func readTasks(cmd *cobra.Command, path string) ([]task.Task, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return document.DecodeTasks(data)
}

func newPlanner(cfg config.Config) (*planner.Planner, error) {
	weekStart, err := cfg.WeekStart()
	if err != nil {
		return nil, err
	}
	return planner.New(weekStart), nil
}

func newReducer(cfg config.Config, l zerolog.Logger) *reducer.Reducer {
	return reducer.New(append(cfg.ReducerOptions(), reducer.WithLogger(l))...)
}

func logger() zerolog.Logger {
	return log.Logger
}
