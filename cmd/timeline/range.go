package main

import (
	"time"

	"github.com/metalagman/timeline/internal/planner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rangeOutput struct {
	ViewMode      planner.ViewMode `yaml:"view_mode"`
	planner.Range `yaml:",inline"`
	Columns       []time.Time `yaml:"columns,omitempty"`
}

func rangeCmd() *cobra.Command {
	var (
		tasksPath string
		mode      string
		preSteps  int
		columns   bool
	)
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Compute the visible window of a task collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := repoConfig()
			if err != nil {
				return err
			}
			tasks, err := readTasks(cmd, tasksPath)
			if err != nil {
				return err
			}
			p, err := newPlanner(cfg)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("mode") {
				mode = cfg.View.Mode
			}
			viewMode, err := planner.ParseViewMode(mode)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pre-steps") {
				preSteps = cfg.View.PreSteps
			}

			rng, err := p.ComputeRange(tasks, viewMode, preSteps)
			if err != nil {
				return err
			}
			out := rangeOutput{ViewMode: viewMode, Range: rng}
			if columns {
				out.Columns = rng.Columns(viewMode)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&tasksPath, "tasks", "-", "task collection file, - for stdin")
	cmd.Flags().StringVar(&mode, "mode", "", "view mode (Hour, Quarter Day, Half Day, Day, TwoDays, Week, Month, QuarterYear, Year)")
	cmd.Flags().IntVar(&preSteps, "pre-steps", 0, "padding columns before the first task")
	cmd.Flags().BoolVar(&columns, "columns", false, "also print the start of every column")
	return cmd
}
