package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/codescope/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes codescope's analysis
as tools that LLMs can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "codescope": {
        "command": "codescope",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_project   Entities, cross-file dependencies and metrics
  - analyze_source    Single-source analysis
  - analyze_graph     Dependency graph with cycles and PageRank`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server.json registry manifest and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return fmt.Errorf("failed to generate manifest: %w", err)
		}
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}

	// stdout carries the protocol; the default logger writes to stderr.
	return mcpserver.NewServer(version, cfg, slog.Default()).Run(c.Context)
}
