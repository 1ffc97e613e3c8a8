package models

// FileAnalysis holds everything extracted from one file. A file that failed
// to parse keeps its FileName and ParseError and has empty lists and zero metrics.
type FileAnalysis struct {
	FileName     string            `json:"fileName" toon:"fileName"`
	Language     string            `json:"language,omitempty" toon:"language,omitempty"`
	ContentHash  string            `json:"contentHash,omitempty" toon:"contentHash,omitempty"`
	ParseError   string            `json:"parseError,omitempty" toon:"parseError,omitempty"`
	Functions    []FunctionEntity  `json:"functions" toon:"functions"`
	Variables    []VariableEntity  `json:"variables" toon:"variables"`
	Imports      []ImportEntity    `json:"imports" toon:"imports"`
	Classes      []ClassEntity     `json:"classes" toon:"classes"`
	Components   []ComponentEntity `json:"components" toon:"components"`
	Dependencies []DependencyEdge  `json:"dependencies" toon:"dependencies"`
	Metrics      FileMetrics       `json:"fileMetrics" toon:"fileMetrics"`
}

// NewFileAnalysis returns an analysis for name with empty, non-nil lists.
func NewFileAnalysis(name string) FileAnalysis {
	return FileAnalysis{
		FileName:     name,
		Functions:    []FunctionEntity{},
		Variables:    []VariableEntity{},
		Imports:      []ImportEntity{},
		Classes:      []ClassEntity{},
		Components:   []ComponentEntity{},
		Dependencies: []DependencyEdge{},
	}
}

// Failed reports whether the file could not be analyzed.
func (f *FileAnalysis) Failed() bool {
	return f.ParseError != ""
}

// ProjectAnalysisResult is the output of one project analysis call.
type ProjectAnalysisResult struct {
	Files          []FileAnalysis    `json:"files" toon:"files"`
	Functions      []FunctionEntity  `json:"functions" toon:"functions"`
	Variables      []VariableEntity  `json:"variables" toon:"variables"`
	Imports        []ImportEntity    `json:"imports" toon:"imports"`
	Classes        []ClassEntity     `json:"classes" toon:"classes"`
	Components     []ComponentEntity `json:"components" toon:"components"`
	Dependencies   []DependencyEdge  `json:"dependencies" toon:"dependencies"`
	ProjectMetrics ProjectMetrics    `json:"projectMetrics" toon:"projectMetrics"`
	Graph          GraphSummary      `json:"graph" toon:"graph"`
	Error          string            `json:"error,omitempty" toon:"error,omitempty"`
}

// EmptyResult is returned when a project-level failure prevents analysis.
// Every collection is empty and every metric is zero.
func EmptyResult(msg string) *ProjectAnalysisResult {
	r := NewProjectResult(nil, ProjectMetrics{}, GraphSummary{})
	r.Error = msg
	return r
}

// NewProjectResult composes a result from resolved file analyses, flattening
// each entity list in file order.
func NewProjectResult(files []FileAnalysis, metrics ProjectMetrics, graph GraphSummary) *ProjectAnalysisResult {
	r := &ProjectAnalysisResult{
		Files:          make([]FileAnalysis, 0, len(files)),
		Functions:      []FunctionEntity{},
		Variables:      []VariableEntity{},
		Imports:        []ImportEntity{},
		Classes:        []ClassEntity{},
		Components:     []ComponentEntity{},
		Dependencies:   []DependencyEdge{},
		ProjectMetrics: metrics,
		Graph:          graph,
	}
	for _, f := range files {
		r.Files = append(r.Files, f)
		r.Functions = append(r.Functions, f.Functions...)
		r.Variables = append(r.Variables, f.Variables...)
		r.Imports = append(r.Imports, f.Imports...)
		r.Classes = append(r.Classes, f.Classes...)
		r.Components = append(r.Components, f.Components...)
		r.Dependencies = append(r.Dependencies, f.Dependencies...)
	}
	return r
}

// AnalysisResult is the single-file shape returned by the legacy entry point.
type AnalysisResult struct {
	Functions    []FunctionEntity `json:"functions" toon:"functions"`
	Variables    []VariableEntity `json:"variables" toon:"variables"`
	Imports      []ImportEntity   `json:"imports" toon:"imports"`
	Dependencies []DependencyEdge `json:"dependencies" toon:"dependencies"`
	Metrics      FileMetrics      `json:"metrics" toon:"metrics"`
	Error        string           `json:"error,omitempty" toon:"error,omitempty"`
}

// NewAnalysisResult projects a single FileAnalysis onto the legacy shape.
func NewAnalysisResult(f FileAnalysis) *AnalysisResult {
	return &AnalysisResult{
		Functions:    f.Functions,
		Variables:    f.Variables,
		Imports:      f.Imports,
		Dependencies: f.Dependencies,
		Metrics:      f.Metrics,
		Error:        f.ParseError,
	}
}
