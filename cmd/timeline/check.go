package main

import (
	"fmt"
	"strings"

	"github.com/metalagman/timeline/internal/relation"
	"github.com/metalagman/timeline/internal/task"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var tasksPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report consistency problems in a task collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := readTasks(cmd, tasksPath)
			if err != nil {
				return err
			}
			issues := task.Audit(tasks)
			cycle := relation.DetectCycle(tasks)

			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())
			}
			if cycle != nil {
				fmt.Fprintf(out, "dependency cycle: %s\n", strings.Join(cycle, " -> "))
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issue(s) found", len(issues))
			}
			fmt.Fprintf(out, "%d task(s) ok\n", len(tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&tasksPath, "tasks", "-", "task collection file, - for stdin")
	return cmd
}
