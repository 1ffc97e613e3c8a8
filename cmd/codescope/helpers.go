package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codescope/internal/fileproc"
	"github.com/panbanda/codescope/internal/output"
	"github.com/panbanda/codescope/internal/progress"
	"github.com/panbanda/codescope/internal/scanner"
	"github.com/panbanda/codescope/internal/vcs"
	"github.com/panbanda/codescope/pkg/analyzer"
	"github.com/panbanda/codescope/pkg/analyzer/project"
	"github.com/panbanda/codescope/pkg/config"
	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/source"
)

var errNoSources = errors.New("no source files found")

// valueFlags are the flags whose next argument is their value. urfave/cli
// stops flag parsing at the first positional argument, so flags written
// after paths arrive in Args and are parsed here.
var valueFlags = map[string]bool{
	"-f": true, "--format": true,
	"-o": true, "--output": true,
	"--ref": true, "--workers": true, "--include": true, "--scope": true,
}

// getPaths returns positional args without trailing flags, defaulting to ["."].
func getPaths(c *cli.Context) []string {
	args := c.Args().Slice()
	var paths []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") && arg != "-" {
			if valueFlags[arg] {
				i++
			}
			continue
		}
		paths = append(paths, arg)
	}
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// getFlag returns a string flag, preferring a value given after the paths.
func getFlag(c *cli.Context, name, short string) string {
	args := c.Args().Slice()
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--"+name || (short != "" && args[i] == "-"+short) {
			return args[i+1]
		}
	}
	return c.String(name)
}

func loadConfig(c *cli.Context) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, path, nil
}

// applyFlags overlays command flags on the loaded config.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include.Patterns = include
	}
}

// loadSources scans paths, or the tree of ref when it is set, and reads the
// accepted files into memory.
func loadSources(ctx context.Context, cfg *config.Config, paths []string, ref string) ([]models.SourceFile, error) {
	sc := scanner.NewScanner(cfg)

	var src source.ContentSource
	var files []string
	if ref != "" {
		repo, err := vcs.DefaultOpener().PlainOpenWithDetect(paths[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open repository: %w", err)
		}
		tree, err := repo.Tree(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
		}
		if files, err = sc.ScanTree(tree); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", ref, err)
		}
		src = source.NewTree(tree)
	} else {
		var err error
		if files, err = sc.ScanPaths(paths); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		var skipped int
		if files, skipped = scanner.FilterBySize(files, cfg.Analysis.MaxFileSize); skipped > 0 {
			slog.Info("skipped oversized files", "count", skipped, "max_size", cfg.Analysis.MaxFileSize)
		}
		src = source.NewFilesystem()
	}

	if len(files) == 0 {
		return nil, errNoSources
	}

	loaded, errs := source.Load(ctx, src, files, fileproc.WithWorkers(cfg.Analysis.Workers))
	if errs.HasErrors() {
		for _, pe := range errs.Sorted() {
			slog.Warn("failed to read file", "file", pe.Path, "error", pe.Err)
		}
	}
	if len(loaded) == 0 {
		return nil, errNoSources
	}
	return loaded, nil
}

// newAnalyzer builds a project analyzer from cfg, ticking tracker per file.
func newAnalyzer(cfg *config.Config, tracker *progress.Tracker) analyzer.ProjectAnalyzer {
	return project.New(
		project.WithWorkers(cfg.Analysis.Workers),
		project.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		project.WithParseTimeout(cfg.ParseTimeout()),
		project.WithHighComplexityThreshold(cfg.Analysis.HighComplexityThreshold),
		project.WithProgress(tracker.Tick),
		project.WithLogger(slog.Default()),
	)
}

// newFormatter resolves the output format from the flag, then the config.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := getFlag(c, "format", "f")
	if format == "" {
		format = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(format), getFlag(c, "output", "o"), cfg.Output.Color && !color.NoColor)
}

// showProgress draws bars only for an interactive stderr.
func showProgress() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
