package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/notice-registry/pkg/api"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the extraction tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.cfg.Pipeline(a.logger)
			if err != nil {
				return err
			}
			srv := server.NewMCPServer("notices", version, server.WithToolCapabilities(false))
			api.RegisterMCPTools(srv, p, a.cfg.Normalizer())

			a.logger.Info("mcp serving on stdio")
			return server.ServeStdio(srv)
		},
	}
}
