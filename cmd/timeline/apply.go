package main

import (
	"errors"
	"fmt"

	"github.com/metalagman/timeline/internal/document"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func applyCmd() *cobra.Command {
	var tasksPath, intentPath string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply an intent to a task collection and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := repoConfig()
			if err != nil {
				return err
			}
			if tasksPath == "-" && intentPath == "-" {
				return errors.New("tasks and intent cannot both be read from stdin")
			}
			tasks, err := readTasks(cmd, tasksPath)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, intentPath)
			if err != nil {
				return fmt.Errorf("read intent: %w", err)
			}
			intent, err := document.DecodeIntent(data)
			if err != nil {
				return err
			}

			res, err := newReducer(cfg, logger()).Reduce(tasks, intent)
			if err != nil {
				return err
			}
			if !res.Changed {
				log.Warn().
					Str("intent", string(intent.Kind())).
					Str("reason", res.Rejection).
					Msg("intent rejected, collection unchanged")
			}
			return document.EncodeTasks(cmd.OutOrStdout(), res.Tasks)
		},
	}
	cmd.Flags().StringVar(&tasksPath, "tasks", "-", "task collection file, - for stdin")
	cmd.Flags().StringVar(&intentPath, "intent", "", "intent file, - for stdin")
	_ = cmd.MarkFlagRequired("intent")
	return cmd
}
