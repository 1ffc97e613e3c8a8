package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/codescope/internal/fileproc"
	"github.com/panbanda/codescope/internal/output"
	"github.com/panbanda/codescope/internal/scanner"
	"github.com/panbanda/codescope/internal/vcs"
	"github.com/panbanda/codescope/pkg/analyzer"
	"github.com/panbanda/codescope/pkg/analyzer/graph"
	"github.com/panbanda/codescope/pkg/analyzer/project"
	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/source"
)

// InlineFile is a source passed directly in a tool call.
type InlineFile struct {
	Name    string `json:"name" jsonschema:"File name; its extension selects the grammar."`
	Content string `json:"content" jsonschema:"Source text."`
}

// AnalyzeInput is the base input for project tools.
type AnalyzeInput struct {
	Paths  []string     `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Files  []InlineFile `json:"files,omitempty" jsonschema:"Inline sources to analyze instead of paths."`
	Ref    string       `json:"ref,omitempty" jsonschema:"Git revision to analyze instead of the working tree."`
	Format string       `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// SourceInput is the input of analyze_source.
type SourceInput struct {
	Content string `json:"content" jsonschema:"Source text to analyze."`
	Format  string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// GraphInput adds graph-specific options.
type GraphInput struct {
	AnalyzeInput
	Scope string `json:"scope,omitempty" jsonschema:"Node granularity: file (default) or function."`
}

// formatMermaid is only meaningful for analyze_graph.
const formatMermaid output.Format = "mermaid"

var errNoSources = errors.New("no source files found")

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	case "mermaid":
		return formatMermaid
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		var b strings.Builder
		if err := output.WriteJSON(&b, data); err != nil {
			return "", err
		}
		return b.String(), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) newAnalyzer() analyzer.ProjectAnalyzer {
	return project.New(
		project.WithWorkers(s.config.Analysis.Workers),
		project.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		project.WithParseTimeout(s.config.ParseTimeout()),
		project.WithHighComplexityThreshold(s.config.Analysis.HighComplexityThreshold),
		project.WithLogger(s.logger),
	)
}

// loadSources resolves a tool input to in-memory sources.
func (s *Server) loadSources(ctx context.Context, input AnalyzeInput) ([]models.SourceFile, error) {
	if len(input.Files) > 0 {
		files := make([]models.SourceFile, len(input.Files))
		for i, f := range input.Files {
			files[i] = models.SourceFile{Name: f.Name, Content: f.Content}
		}
		return files, nil
	}

	sc := scanner.NewScanner(s.config)
	var src source.ContentSource
	var paths []string

	if input.Ref != "" {
		repo, err := vcs.DefaultOpener().PlainOpenWithDetect(getPaths(input)[0])
		if err != nil {
			return nil, err
		}
		tree, err := repo.Tree(input.Ref)
		if err != nil {
			return nil, err
		}
		if paths, err = sc.ScanTree(tree); err != nil {
			return nil, err
		}
		src = source.NewTree(tree)
	} else {
		var err error
		if paths, err = sc.ScanPaths(getPaths(input)); err != nil {
			return nil, err
		}
		src = source.NewFilesystem()
	}

	if len(paths) == 0 {
		return nil, errNoSources
	}

	files, errs := source.Load(ctx, src, paths, fileproc.WithWorkers(s.config.Analysis.Workers))
	if errs.HasErrors() {
		for _, pe := range errs.Sorted() {
			s.logger.Warn("failed to read file", "file", pe.Path, "error", pe.Err)
		}
	}
	return files, nil
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	files, err := s.loadSources(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}

	result := s.newAnalyzer().AnalyzeProject(ctx, files)
	if result.Error != "" {
		return toolError(result.Error)
	}
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input SourceInput) (*mcp.CallToolResult, any, error) {
	result := s.newAnalyzer().AnalyzeSource(ctx, input.Content)
	if result.Error != "" {
		return toolError(result.Error)
	}
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleAnalyzeGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	files, err := s.loadSources(ctx, input.AnalyzeInput)
	if err != nil {
		return toolError(err.Error())
	}

	result := s.newAnalyzer().AnalyzeProject(ctx, files)
	if result.Error != "" {
		return toolError(result.Error)
	}

	scope := graph.ScopeFile
	if input.Scope == string(graph.ScopeFunction) {
		scope = graph.ScopeFunction
	}
	g := graph.New(graph.WithScope(scope)).Build(result.Files)

	format := getFormat(input.Format)
	if format == formatMermaid {
		opts := graph.DefaultMermaidOptions()
		opts.ShowComplexity = true
		opts.NodeComplexity = graph.NodeComplexity(result.Files, scope)
		return textResult(g.ToMermaidWithOptions(opts)), nil, nil
	}

	return toolResult(struct {
		Graph   *graph.DependencyGraph `json:"graph" toon:"graph"`
		Summary models.GraphSummary    `json:"summary" toon:"summary"`
	}{Graph: g, Summary: graph.Summarize(g, graph.DefaultTopFiles)}, format)
}
