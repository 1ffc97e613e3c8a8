package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codescope/internal/output"
	"github.com/panbanda/codescope/internal/progress"
)

// sourceFlags are shared by every command that scans a project.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown, toon, yaml",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.StringFlag{
			Name:  "ref",
			Usage: "Analyze a git revision (branch, tag, SHA) instead of the working tree",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of parallel workers (0 uses 2x CPU count)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Only analyze files matching these glob patterns",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze a project: entities, cross-file dependencies and complexity",
		ArgsUsage: "[path...]",
		Flags:     sourceFlags(),
		Action:    runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	files, err := loadSources(c.Context, cfg, getPaths(c), getFlag(c, "ref", ""))
	if errors.Is(err, errNoSources) {
		color.Yellow("No source files found")
		return nil
	}
	if err != nil {
		return err
	}

	tracker := progress.NewTracker("Analyzing...", len(files), showProgress())
	result := newAnalyzer(cfg, tracker).AnalyzeProject(c.Context, files)
	if result.Error != "" {
		tracker.FinishError(errors.New(result.Error))
		return fmt.Errorf("analysis failed: %s", result.Error)
	}
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.ProjectReport(result, cfg.Analysis.HighComplexityThreshold)); err != nil {
		return err
	}
	if n := result.ProjectMetrics.ParseFailures; n > 0 && formatter.Format() == output.FormatText {
		formatter.Warning("%d file(s) failed to parse", n)
	}
	return nil
}
