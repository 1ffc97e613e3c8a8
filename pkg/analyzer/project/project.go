// Package project orchestrates a full analysis over a batch of source files:
// parallel parse and extraction, cross-file resolution, metrics and the file
// dependency graph.
package project

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/codescope/internal/fileproc"
	"github.com/panbanda/codescope/pkg/analyzer/complexity"
	"github.com/panbanda/codescope/pkg/analyzer/extract"
	"github.com/panbanda/codescope/pkg/analyzer/graph"
	"github.com/panbanda/codescope/pkg/analyzer/metrics"
	"github.com/panbanda/codescope/pkg/analyzer/resolve"
	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

// LegacyFileName is the name given to source analyzed through AnalyzeSource.
const LegacyFileName = "input.js"

// State reports whether an analyzer has calls in flight.
type State int32

const (
	Idle State = iota
	Analyzing
)

func (s State) String() string {
	if s == Analyzing {
		return "analyzing"
	}
	return "idle"
}

// ProgressFunc is called once per processed file.
type ProgressFunc func()

// Analyzer runs project analyses. Every call builds its own extractor state,
// symbol index and metrics, so an Analyzer may serve concurrent calls.
type Analyzer struct {
	workers       int
	maxFileSize   int64
	parseTimeout  time.Duration
	highThreshold int
	onProgress    ProgressFunc
	logger        *slog.Logger
	inFlight      atomic.Int32

	// beforeAggregate runs between resolution and metrics when set.
	beforeAggregate func([]models.FileAnalysis)
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds concurrent per-file work. Values <= 0 use 2x NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize rejects files larger than size bytes as parse failures.
// Zero disables the limit.
func WithMaxFileSize(size int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = size
	}
}

// WithParseTimeout bounds the time spent parsing a single file.
func WithParseTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		a.parseTimeout = d
	}
}

// WithHighComplexityThreshold sets the score above which a function counts
// as highly complex.
func WithHighComplexityThreshold(threshold int) Option {
	return func(a *Analyzer) {
		a.highThreshold = threshold
	}
}

// WithProgress sets a per-file progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates a new project analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parseTimeout:  parser.DefaultParseTimeout,
		highThreshold: models.DefaultHighComplexityThreshold,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns Analyzing while any call is in flight.
func (a *Analyzer) State() State {
	if a.inFlight.Load() > 0 {
		return Analyzing
	}
	return Idle
}

var errNoResult = errors.New("analysis produced no result")

// AnalyzeProject analyzes files and returns the resolved project model.
// Files that fail to parse appear in the result with a ParseError and no
// entities. Failures outside a single file, including cancellation, yield an
// empty result whose Error field explains what happened. It never panics.
func (a *Analyzer) AnalyzeProject(ctx context.Context, files []models.SourceFile) (result *models.ProjectAnalysisResult) {
	a.inFlight.Add(1)
	defer a.inFlight.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("project analysis panicked", "panic", r)
			result = models.EmptyResult(fmt.Sprintf("analysis failed: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return models.EmptyResult(fmt.Sprintf("analysis cancelled: %v", err))
	}

	start := time.Now()
	analyses, err := a.extractAll(ctx, files)
	if err != nil {
		return models.EmptyResult(err.Error())
	}

	resolved, _ := resolve.New(resolve.WithLogger(a.logger)).ResolveFiles(analyses)
	if a.beforeAggregate != nil {
		a.beforeAggregate(resolved)
	}

	agg := metrics.New(metrics.WithHighComplexityThreshold(a.highThreshold))
	for i := range resolved {
		if resolved[i].Failed() {
			continue
		}
		resolved[i].Metrics = agg.FileMetrics(resolved[i], metrics.CountLines(files[i].Content))
	}
	pm := agg.Project(resolved)

	g := graph.New().Build(resolved)
	summary := graph.Summarize(g, graph.DefaultTopFiles)

	a.logger.Debug("project analyzed",
		"files", len(resolved),
		"functions", pm.TotalFunctions,
		"parse_failures", pm.ParseFailures,
		"cross_file", pm.CrossFileDependencies,
		"duration", time.Since(start))

	return models.NewProjectResult(resolved, pm, summary)
}

// AnalyzeSource analyzes a single source text as a one-file project named
// LegacyFileName and returns the flat legacy result.
func (a *Analyzer) AnalyzeSource(ctx context.Context, content string) *models.AnalysisResult {
	res := a.AnalyzeProject(ctx, []models.SourceFile{{Name: LegacyFileName, Content: content}})
	if res.Error != "" || len(res.Files) == 0 {
		fa := models.NewFileAnalysis(LegacyFileName)
		out := models.NewAnalysisResult(fa)
		out.Error = res.Error
		return out
	}
	return models.NewAnalysisResult(res.Files[0])
}

// extractAll parses and extracts every file on the worker pool. The result
// has one entry per input file, in input order.
func (a *Analyzer) extractAll(ctx context.Context, files []models.SourceFile) ([]models.FileAnalysis, error) {
	ex := extract.New(
		extract.WithCalculator(complexity.New()),
		extract.WithLogger(a.logger),
	)

	fileOpts := []fileproc.Option{
		fileproc.WithWorkers(a.workers),
		fileproc.WithParserOptions(
			parser.WithMaxFileSize(a.maxFileSize),
			parser.WithTimeout(a.parseTimeout),
		),
	}
	if a.onProgress != nil {
		fileOpts = append(fileOpts, fileproc.WithProgress(fileproc.ProgressFunc(a.onProgress)))
	}

	analyses, errs := fileproc.MapSources(ctx, files,
		func(psr *parser.Parser, src models.SourceFile) (models.FileAnalysis, error) {
			return a.analyzeFile(ctx, ex, psr, src), nil
		}, fileOpts...)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	if len(analyses) != len(files) {
		return nil, errNoResult
	}

	byPath := errs.ByPath()
	for i := range analyses {
		if analyses[i].Functions != nil {
			continue
		}
		// The slot was never filled: the extractor panicked on this file.
		fa := models.NewFileAnalysis(files[i].Name)
		fa.Language = string(parser.DetectLanguage(files[i].Name))
		fa.ContentHash = contentHash(files[i].Content)
		if err, ok := byPath[files[i].Name]; ok {
			fa.ParseError = err.Error()
		} else {
			fa.ParseError = errNoResult.Error()
		}
		a.logger.Warn("file analysis failed", "file", files[i].Name, "error", fa.ParseError)
		analyses[i] = fa
	}
	return analyses, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, ex *extract.Extractor, psr *parser.Parser, src models.SourceFile) models.FileAnalysis {
	lang := string(parser.DetectLanguage(src.Name))
	hash := contentHash(src.Content)

	res, err := psr.Parse(ctx, []byte(src.Content), src.Name)
	if err != nil {
		a.logger.Warn("parse failed", "file", src.Name, "error", err)
		fa := models.NewFileAnalysis(src.Name)
		fa.Language = lang
		fa.ContentHash = hash
		fa.ParseError = err.Error()
		return fa
	}
	defer res.Close()

	fa := ex.Extract(res)
	fa.Language = lang
	fa.ContentHash = hash
	return fa
}

func contentHash(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
