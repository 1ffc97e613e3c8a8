package models

// DefaultHighComplexityThreshold is the score a function must exceed to count
// as highly complex.
const DefaultHighComplexityThreshold = 5

// FileMetrics summarizes one file.
type FileMetrics struct {
	LinesOfCode             int     `json:"linesOfCode" toon:"linesOfCode"`
	FunctionCount           int     `json:"functionCount" toon:"functionCount"`
	VariableCount           int     `json:"variableCount" toon:"variableCount"`
	ImportCount             int     `json:"importCount" toon:"importCount"`
	ClassCount              int     `json:"classCount" toon:"classCount"`
	ComponentCount          int     `json:"componentCount" toon:"componentCount"`
	DependencyCount         int     `json:"dependencyCount" toon:"dependencyCount"`
	CrossFileDependencies   int     `json:"crossFileDependencies" toon:"crossFileDependencies"`
	TotalComplexity         int     `json:"totalComplexity" toon:"totalComplexity"`
	AverageComplexity       float64 `json:"averageComplexity" toon:"averageComplexity"`
	MaxComplexity           int     `json:"maxComplexity" toon:"maxComplexity"`
	HighComplexityFunctions int     `json:"highComplexityFunctions" toon:"highComplexityFunctions"`
}

// ProjectMetrics aggregates FileMetrics across a batch.
type ProjectMetrics struct {
	TotalFiles              int     `json:"totalFiles" toon:"totalFiles"`
	TotalLines              int     `json:"totalLines" toon:"totalLines"`
	TotalFunctions          int     `json:"totalFunctions" toon:"totalFunctions"`
	TotalVariables          int     `json:"totalVariables" toon:"totalVariables"`
	TotalImports            int     `json:"totalImports" toon:"totalImports"`
	TotalClasses            int     `json:"totalClasses" toon:"totalClasses"`
	TotalComponents         int     `json:"totalComponents" toon:"totalComponents"`
	TotalDependencies       int     `json:"totalDependencies" toon:"totalDependencies"`
	CrossFileDependencies   int     `json:"crossFileDependencies" toon:"crossFileDependencies"`
	TotalComplexity         int     `json:"totalComplexity" toon:"totalComplexity"`
	AverageComplexity       float64 `json:"averageComplexity" toon:"averageComplexity"`
	HighComplexityFunctions int     `json:"highComplexityFunctions" toon:"highComplexityFunctions"`
	MostComplexFile         string  `json:"mostComplexFile" toon:"mostComplexFile"`
	MostDependedOnFile      string  `json:"mostDependedOnFile" toon:"mostDependedOnFile"`
	UnreferencedFunctions   int     `json:"unreferencedFunctions" toon:"unreferencedFunctions"`
	ParseFailures           int     `json:"parseFailures" toon:"parseFailures"`
}
