package main

import (
	"github.com/metalagman/timeline/internal/mcpserver"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the timeline engine as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := repoConfig()
			if err != nil {
				return err
			}
			p, err := newPlanner(cfg)
			if err != nil {
				return err
			}
			svc, err := newMCPService(cfg, p, newReducer(cfg, logger()))
			if err != nil {
				return err
			}
			return mcpserver.RunStdio(cmd.Context(), mcpserver.New(svc, version, logger()))
		},
	}
}
