package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/codescope/internal/output"
	"github.com/panbanda/codescope/internal/progress"
	"github.com/panbanda/codescope/pkg/models"
)

func fileCmd() *cli.Command {
	return &cli.Command{
		Name:      "file",
		Usage:     "Analyze a single source file, or stdin with -",
		ArgsUsage: "[path|-]",
		Flags: []cli.Flag{
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
		},
		Action: runFileCmd,
	}
}

func runFileCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}

	path := "-"
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}

	an := newAnalyzer(cfg, progress.NewTracker("", 0, false))

	var result *models.AnalysisResult
	if path == "-" {
		content, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		result = an.AnalyzeSource(c.Context, string(content))
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		res := an.AnalyzeProject(c.Context, []models.SourceFile{{Name: filepath.ToSlash(path), Content: string(content)}})
		if res.Error != "" || len(res.Files) == 0 {
			result = &models.AnalysisResult{Error: res.Error}
		} else {
			result = models.NewAnalysisResult(res.Files[0])
		}
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.FileReport(result, cfg.Analysis.HighComplexityThreshold))
}
