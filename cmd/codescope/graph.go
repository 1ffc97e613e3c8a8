package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codescope/internal/output"
	"github.com/panbanda/codescope/internal/progress"
	"github.com/panbanda/codescope/pkg/analyzer/graph"
	"github.com/panbanda/codescope/pkg/models"
)

func graphCmd() *cli.Command {
	flags := sourceFlags()
	flags = append(flags,
		&cli.StringFlag{
			Name:  "scope",
			Value: string(graph.ScopeFile),
			Usage: "Node granularity: file or function",
		},
		&cli.IntFlag{
			Name:  "max-nodes",
			Usage: "Limit the diagram to the first N nodes (0 for no limit, default 50)",
		},
	)
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Generate the cross-file dependency graph (Mermaid, or JSON with --format json)",
		ArgsUsage: "[path...]",
		Flags:     flags,
		Action:    runGraphCmd,
	}
}

type graphReport struct {
	Graph   *graph.DependencyGraph `json:"graph" toon:"graph"`
	Summary models.GraphSummary    `json:"summary" toon:"summary"`
}

func runGraphCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	scope := graph.Scope(getFlag(c, "scope", ""))
	if scope != graph.ScopeFile && scope != graph.ScopeFunction {
		return fmt.Errorf("unknown scope %q (want file or function)", scope)
	}

	files, err := loadSources(c.Context, cfg, getPaths(c), getFlag(c, "ref", ""))
	if errors.Is(err, errNoSources) {
		color.Yellow("No source files found")
		return nil
	}
	if err != nil {
		return err
	}

	tracker := progress.NewTracker("Building dependency graph...", len(files), showProgress())
	result := newAnalyzer(cfg, tracker).AnalyzeProject(c.Context, files)
	if result.Error != "" {
		tracker.FinishError(errors.New(result.Error))
		return fmt.Errorf("analysis failed: %s", result.Error)
	}
	tracker.FinishSuccess()

	g := graph.New(graph.WithScope(scope)).Build(result.Files)

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	switch formatter.Format() {
	case output.FormatJSON, output.FormatTOON, output.FormatYAML:
		return formatter.Output(graphReport{Graph: g, Summary: graph.Summarize(g, graph.DefaultTopFiles)})
	}

	opts := graph.DefaultMermaidOptions()
	if c.IsSet("max-nodes") {
		opts.MaxNodes = c.Int("max-nodes")
	}
	opts.ShowComplexity = true
	opts.NodeComplexity = graph.NodeComplexity(result.Files, scope)

	w := formatter.Writer()
	fmt.Fprintln(w, "```mermaid")
	fmt.Fprint(w, g.ToMermaidWithOptions(opts))
	fmt.Fprintln(w, "```")
	return nil
}
