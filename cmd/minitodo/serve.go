package main

import (
	"github.com/spf13/cobra"

	"github.com/baiirun/minitodo/internal/logging"
	"github.com/baiirun/minitodo/internal/mcpserver"
	"github.com/baiirun/minitodo/internal/tui"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the todo tools over MCP on stdio",
		Long: `Run an MCP server on stdin and stdout. Stdout carries the protocol, so logs
go to stderr or to --log-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			a.log.Info().
				Str("backend", a.cfg.Backend).
				Str("path", a.cfg.StorePath()).
				Msg("starting MCP server")
			srv := mcpserver.New(a.todos, a.rules, a.pipeline, logging.Component("mcp"), Version)
			return srv.ServeStdio()
		},
	}
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and complete todos interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.todos)
		},
	}
}
