// Package metrics computes per-file and project-wide figures from resolved
// file analyses.
package metrics

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/codescope/pkg/models"
)

// Aggregator computes FileMetrics and ProjectMetrics.
type Aggregator struct {
	highThreshold int
}

// Option is a functional option for configuring Aggregator.
type Option func(*Aggregator)

// WithHighComplexityThreshold sets the score a function must exceed to be
// counted as highly complex.
func WithHighComplexityThreshold(threshold int) Option {
	return func(a *Aggregator) {
		a.highThreshold = threshold
	}
}

// New creates a new aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{highThreshold: models.DefaultHighComplexityThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CountLines returns the number of lines in src; empty text has none.
func CountLines(src string) int {
	if src == "" {
		return 0
	}
	return strings.Count(src, "\n") + 1
}

// FileMetrics summarizes a resolved file.
func (a *Aggregator) FileMetrics(f models.FileAnalysis, linesOfCode int) models.FileMetrics {
	m := models.FileMetrics{
		LinesOfCode:     linesOfCode,
		FunctionCount:   len(f.Functions),
		VariableCount:   len(f.Variables),
		ImportCount:     len(f.Imports),
		ClassCount:      len(f.Classes),
		ComponentCount:  len(f.Components),
		DependencyCount: len(f.Dependencies),
	}

	for _, fn := range f.Functions {
		m.TotalComplexity += fn.Complexity
		if fn.Complexity > m.MaxComplexity {
			m.MaxComplexity = fn.Complexity
		}
		if fn.Complexity > a.highThreshold {
			m.HighComplexityFunctions++
		}
	}
	if m.FunctionCount > 0 {
		m.AverageComplexity = float64(m.TotalComplexity) / float64(m.FunctionCount)
	}

	for _, e := range f.Dependencies {
		if e.IsCrossFile {
			m.CrossFileDependencies++
		}
	}
	return m
}

// Project aggregates files whose Metrics are already populated. Selections
// are strict maxima in input order, so ties keep the earlier file and a file
// scoring zero is never selected.
func (a *Aggregator) Project(files []models.FileAnalysis) models.ProjectMetrics {
	var pm models.ProjectMetrics
	pm.TotalFiles = len(files)

	dependents := make(map[string]int)
	for _, f := range files {
		m := f.Metrics
		pm.TotalLines += m.LinesOfCode
		pm.TotalFunctions += m.FunctionCount
		pm.TotalVariables += m.VariableCount
		pm.TotalImports += m.ImportCount
		pm.TotalClasses += m.ClassCount
		pm.TotalComponents += m.ComponentCount
		pm.TotalDependencies += m.DependencyCount
		pm.CrossFileDependencies += m.CrossFileDependencies
		pm.TotalComplexity += m.TotalComplexity
		pm.HighComplexityFunctions += m.HighComplexityFunctions
		if f.Failed() {
			pm.ParseFailures++
		}
		for _, e := range f.Dependencies {
			dependents[e.CalleeFile]++
		}
	}
	if pm.TotalFunctions > 0 {
		pm.AverageComplexity = float64(pm.TotalComplexity) / float64(pm.TotalFunctions)
	}

	maxComplexity, maxDependents := 0, 0
	for _, f := range files {
		if f.Metrics.TotalComplexity > maxComplexity {
			maxComplexity = f.Metrics.TotalComplexity
			pm.MostComplexFile = f.FileName
		}
		if n := dependents[f.FileName]; n > maxDependents {
			maxDependents = n
			pm.MostDependedOnFile = f.FileName
		}
	}

	pm.UnreferencedFunctions = len(Unreferenced(files))
	return pm
}

// Unreferenced returns functions never named as the callee of any edge, in
// file order. A method `Class.m` is referenced by a callee of `Class.m` or
// by any member call ending in `.m`.
func Unreferenced(files []models.FileAnalysis) []models.FunctionEntity {
	callees := make(map[string]bool)
	suffixes := make(map[string]bool)
	for _, f := range files {
		for _, e := range f.Dependencies {
			callees[e.Callee] = true
			if i := strings.LastIndex(e.Callee, "."); i >= 0 {
				suffixes[e.Callee[i+1:]] = true
			}
		}
	}

	var all []models.FunctionEntity
	referenced := roaring.New()
	for _, f := range files {
		for _, fn := range f.Functions {
			idx := uint32(len(all))
			all = append(all, fn)
			if callees[fn.Name] {
				referenced.Add(idx)
				continue
			}
			if i := strings.LastIndex(fn.Name, "."); i >= 0 && suffixes[fn.Name[i+1:]] {
				referenced.Add(idx)
			}
		}
	}

	unreferenced := roaring.New()
	unreferenced.AddRange(0, uint64(len(all)))
	unreferenced.AndNot(referenced)

	out := make([]models.FunctionEntity, 0, unreferenced.GetCardinality())
	it := unreferenced.Iterator()
	for it.HasNext() {
		out = append(out, all[it.Next()])
	}
	return out
}
