package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "codescope",
		Usage:   "JavaScript and TypeScript project analysis",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Description: `codescope parses JavaScript, TypeScript and JSX sources, extracts functions,
components, variables and imports, resolves calls across files and reports
complexity and dependency metrics.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CODESCOPE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			slog.SetDefault(newLogger(c))
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			fileCmd(),
			graphCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}

// newLogger writes text logs to stderr. The level comes from --verbose or,
// failing that, from the config file; a broken config is reported later by
// the command that loads it.
func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	} else if cfg, _, err := loadConfig(c); err == nil {
		level = cfg.SlogLevel()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
