// Package analyzer defines the entry points shared by the CLI and the MCP
// server. The engine itself lives in the subpackages: extract, complexity,
// resolve, metrics, graph and project.
package analyzer

import (
	"context"

	"github.com/panbanda/codescope/pkg/analyzer/project"
	"github.com/panbanda/codescope/pkg/models"
)

// ProjectAnalyzer analyzes a batch of in-memory source files.
type ProjectAnalyzer interface {
	// AnalyzeProject never returns an error; failures are reported in the
	// result's Error field and per-file ParseError fields.
	AnalyzeProject(ctx context.Context, files []models.SourceFile) *models.ProjectAnalysisResult

	// AnalyzeSource analyzes one anonymous source text.
	AnalyzeSource(ctx context.Context, content string) *models.AnalysisResult
}

var _ ProjectAnalyzer = (*project.Analyzer)(nil)
