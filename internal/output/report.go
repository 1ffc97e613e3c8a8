package output

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/panbanda/codescope/pkg/models"
)

// DefaultTopFunctions bounds the function table of a project report.
const DefaultTopFunctions = 20

// ProjectReport renders a project analysis result. Structured formats
// serialize the full result; text and markdown show summary tables.
func ProjectReport(res *models.ProjectAnalysisResult, highThreshold int) *Report {
	r := &Report{Title: "Project Analysis", Data: res}
	if res.Error != "" {
		r.Sections = append(r.Sections, &Section{
			Title: "Error",
			Lines: [][2]string{{"error", res.Error}},
		})
		return r
	}

	pm := res.ProjectMetrics
	r.Sections = append(r.Sections,
		&Section{
			Title: "Summary",
			Lines: [][2]string{
				{"Files", strconv.Itoa(pm.TotalFiles)},
				{"Lines", strconv.Itoa(pm.TotalLines)},
				{"Functions", strconv.Itoa(pm.TotalFunctions)},
				{"Variables", strconv.Itoa(pm.TotalVariables)},
				{"Imports", strconv.Itoa(pm.TotalImports)},
				{"Classes", strconv.Itoa(pm.TotalClasses)},
				{"Components", strconv.Itoa(pm.TotalComponents)},
				{"Dependencies", strconv.Itoa(pm.TotalDependencies)},
				{"Cross-file dependencies", strconv.Itoa(pm.CrossFileDependencies)},
				{"Average complexity", fmt.Sprintf("%.2f", pm.AverageComplexity)},
				{"High complexity functions", strconv.Itoa(pm.HighComplexityFunctions)},
				{"Unreferenced functions", strconv.Itoa(pm.UnreferencedFunctions)},
				{"Most complex file", orDash(pm.MostComplexFile)},
				{"Most depended-on file", orDash(pm.MostDependedOnFile)},
				{"Parse failures", strconv.Itoa(pm.ParseFailures)},
				{"Dependency cycles", strconv.Itoa(len(res.Graph.Cycles))},
			},
		},
		filesTable(res.Files),
		functionsTable(res.Functions, highThreshold, DefaultTopFunctions),
	)
	if len(res.Components) > 0 {
		r.Sections = append(r.Sections, componentsTable(res.Components))
	}
	if cross := crossFileTable(res.Dependencies); cross != nil {
		r.Sections = append(r.Sections, cross)
	}
	if failures := failuresTable(res.Files); failures != nil {
		r.Sections = append(r.Sections, failures)
	}
	return r
}

// FileReport renders the single-file legacy result.
func FileReport(res *models.AnalysisResult, highThreshold int) *Report {
	r := &Report{Title: "File Analysis", Data: res}
	if res.Error != "" {
		r.Sections = append(r.Sections, &Section{
			Title: "Error",
			Lines: [][2]string{{"error", res.Error}},
		})
		return r
	}
	m := res.Metrics
	r.Sections = append(r.Sections,
		&Section{
			Title: "Metrics",
			Lines: [][2]string{
				{"Lines", strconv.Itoa(m.LinesOfCode)},
				{"Functions", strconv.Itoa(m.FunctionCount)},
				{"Variables", strconv.Itoa(m.VariableCount)},
				{"Imports", strconv.Itoa(m.ImportCount)},
				{"Dependencies", strconv.Itoa(m.DependencyCount)},
				{"Average complexity", fmt.Sprintf("%.2f", m.AverageComplexity)},
				{"Max complexity", strconv.Itoa(m.MaxComplexity)},
			},
		},
		functionsTable(res.Functions, highThreshold, 0),
	)
	return r
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func filesTable(files []models.FileAnalysis) *Table {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		m := f.Metrics
		rows = append(rows, []string{
			f.FileName,
			strconv.Itoa(m.LinesOfCode),
			strconv.Itoa(m.FunctionCount),
			strconv.Itoa(m.ComponentCount),
			strconv.Itoa(m.DependencyCount),
			strconv.Itoa(m.CrossFileDependencies),
			fmt.Sprintf("%.2f", m.AverageComplexity),
			strconv.Itoa(m.MaxComplexity),
		})
	}
	return NewTable("Files",
		[]string{"File", "Lines", "Functions", "Components", "Deps", "Cross-file", "Avg CC", "Max CC"},
		rows, nil, files)
}

// functionsTable lists functions by descending complexity, at most limit
// rows when limit > 0.
func functionsTable(fns []models.FunctionEntity, highThreshold, limit int) *Table {
	sorted := append([]models.FunctionEntity(nil), fns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Complexity > sorted[j].Complexity
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([][]string, 0, len(sorted))
	for _, fn := range sorted {
		flag := ""
		if fn.Complexity > highThreshold {
			flag = "high"
		}
		rows = append(rows, []string{
			fn.Name,
			fmt.Sprintf("%s:%d", fn.File, fn.Location.StartLine),
			string(fn.Kind),
			strconv.Itoa(fn.Complexity),
			flag,
		})
	}
	return NewTable("Functions",
		[]string{"Function", "Location", "Kind", "Complexity", "Flag"},
		rows, nil, sorted)
}

func componentsTable(components []models.ComponentEntity) *Table {
	rows := make([][]string, 0, len(components))
	for _, c := range components {
		rows = append(rows, []string{
			c.Name,
			string(c.Kind),
			c.File,
			strconv.Itoa(len(c.Props)),
			strconv.Itoa(len(c.Hooks)),
			strconv.Itoa(len(c.State)),
			strconv.Itoa(len(c.Effects)),
		})
	}
	return NewTable("Components",
		[]string{"Component", "Kind", "File", "Props", "Hooks", "State", "Effects"},
		rows, nil, components)
}

func crossFileTable(edges []models.DependencyEdge) *Table {
	var rows [][]string
	var cross []models.DependencyEdge
	for _, e := range edges {
		if !e.IsCrossFile {
			continue
		}
		cross = append(cross, e)
		rows = append(rows, []string{
			e.Caller,
			fmt.Sprintf("%s:%d", e.File, e.Line),
			e.Callee,
			e.CalleeFile,
			string(e.Kind),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return NewTable("Cross-file Dependencies",
		[]string{"Caller", "Location", "Callee", "Callee File", "Kind"},
		rows, nil, cross)
}

func failuresTable(files []models.FileAnalysis) *Table {
	var rows [][]string
	for _, f := range files {
		if f.Failed() {
			rows = append(rows, []string{f.FileName, f.ParseError})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return NewTable("Parse Failures", []string{"File", "Error"}, rows, nil, nil)
}
