// Package graph builds dependency graphs over resolved file analyses and
// summarizes them with gonum.
package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/codescope/pkg/models"
)

// DefaultTopFiles is how many files a summary ranks.
const DefaultTopFiles = 10

// Builder turns resolved file analyses into a DependencyGraph.
type Builder struct {
	scope Scope
}

// Option is a functional option for configuring Builder.
type Option func(*Builder)

// WithScope sets the graph node granularity.
func WithScope(scope Scope) Option {
	return func(b *Builder) {
		b.scope = scope
	}
}

// New creates a new graph builder. The default scope is file.
func New(opts ...Option) *Builder {
	b := &Builder{scope: ScopeFile}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates the graph. File scope links files through cross-file edges
// weighted by edge count; function scope links functions through every
// resolved edge whose caller and callee are both recorded functions.
func (b *Builder) Build(files []models.FileAnalysis) *DependencyGraph {
	if b.scope == ScopeFunction {
		return buildFunctionGraph(files)
	}
	return buildFileGraph(files)
}

type edgeKey struct {
	from, to string
	kind     EdgeType
}

func buildFileGraph(files []models.FileAnalysis) *DependencyGraph {
	g := NewDependencyGraph()
	for _, f := range files {
		g.AddNode(Node{ID: f.FileName, Name: f.FileName, Type: NodeFile, File: f.FileName})
	}

	weights := make(map[edgeKey]float64)
	var order []edgeKey
	for _, f := range files {
		for _, e := range f.Dependencies {
			if !e.IsCrossFile {
				continue
			}
			key := edgeKey{from: e.File, to: e.CalleeFile, kind: edgeType(e.Kind)}
			if _, seen := weights[key]; !seen {
				order = append(order, key)
			}
			weights[key]++
		}
	}
	for _, key := range order {
		g.AddEdge(Edge{From: key.from, To: key.to, Type: key.kind, Weight: weights[key]})
	}
	return g
}

func functionNodeID(file, name string) string {
	return file + "#" + name
}

func buildFunctionGraph(files []models.FileAnalysis) *DependencyGraph {
	g := NewDependencyGraph()
	known := make(map[string]bool)
	for _, f := range files {
		for _, fn := range f.Functions {
			id := functionNodeID(f.FileName, fn.Name)
			if known[id] {
				continue
			}
			known[id] = true
			nodeType := NodeFunction
			if fn.IsComponent {
				nodeType = NodeComponent
			}
			g.AddNode(Node{ID: id, Name: fn.Name, Type: nodeType, File: f.FileName, Line: fn.Location.StartLine})
		}
	}

	weights := make(map[edgeKey]float64)
	var order []edgeKey
	for _, f := range files {
		for _, e := range f.Dependencies {
			from := functionNodeID(e.File, e.Caller)
			to := functionNodeID(e.CalleeFile, e.Callee)
			if !known[from] || !known[to] {
				continue
			}
			key := edgeKey{from: from, to: to, kind: edgeType(e.Kind)}
			if _, seen := weights[key]; !seen {
				order = append(order, key)
			}
			weights[key]++
		}
	}
	for _, key := range order {
		g.AddEdge(Edge{From: key.from, To: key.to, Type: key.kind, Weight: weights[key]})
	}
	return g
}

func edgeType(kind models.EdgeKind) EdgeType {
	switch kind {
	case models.EdgeJSX:
		return EdgeRender
	case models.EdgeNew:
		return EdgeNew
	default:
		return EdgeCall
	}
}

// NodeComplexity maps node IDs to summed function complexity, for Mermaid styling.
func NodeComplexity(files []models.FileAnalysis, scope Scope) map[string]int {
	out := make(map[string]int)
	for _, f := range files {
		for _, fn := range f.Functions {
			if scope == ScopeFunction {
				out[functionNodeID(f.FileName, fn.Name)] = fn.Complexity
			} else {
				out[f.FileName] += fn.Complexity
			}
		}
	}
	return out
}

// gonumGraph wraps a gonum directed graph with ID mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	nodeIDToID map[string]int64
	idToNodeID map[int64]string
}

// toGonumGraph converts a DependencyGraph to a gonum directed graph.
// Self-loops are dropped because simple graphs do not support them.
func toGonumGraph(graph *DependencyGraph) *gonumGraph {
	g := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		nodeIDToID: make(map[string]int64, len(graph.Nodes)),
		idToNodeID: make(map[int64]string, len(graph.Nodes)),
	}

	for i, node := range graph.Nodes {
		id := int64(i)
		g.nodeIDToID[node.ID] = id
		g.idToNodeID[id] = node.ID
		g.directed.AddNode(simple.Node(id))
	}

	for _, edge := range graph.Edges {
		fromID, fromOK := g.nodeIDToID[edge.From]
		toID, toOK := g.nodeIDToID[edge.To]
		if fromOK && toOK && fromID != toID {
			g.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}

	return g
}

// DetectCycles uses gonum's Tarjan SCC to find cycles. Each cycle lists its
// members sorted by ID; cycles are ordered by their first member.
func DetectCycles(graph *DependencyGraph) [][]string {
	if len(graph.Nodes) == 0 {
		return nil
	}

	gGraph := toGonumGraph(graph)
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(gGraph.directed) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, 0, len(scc))
		for _, node := range scc {
			members = append(members, gGraph.idToNodeID[node.ID()])
		}
		sort.Strings(members)
		cycles = append(cycles, members)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// distinctLinks counts ordered (from, to) pairs joined by at least one edge,
// ignoring edge kind and self-loops.
func distinctLinks(graph *DependencyGraph) int {
	type link struct{ from, to string }
	seen := make(map[link]struct{}, len(graph.Edges))
	for _, e := range graph.Edges {
		if e.From != e.To {
			seen[link{e.From, e.To}] = struct{}{}
		}
	}
	return len(seen)
}

// Summarize computes node and edge counts, density, cycles and the topN
// nodes by PageRank. Density counts linked file pairs, so it never exceeds 1.
func Summarize(graph *DependencyGraph, topN int) models.GraphSummary {
	summary := models.GraphSummary{
		TotalNodes: len(graph.Nodes),
		TotalEdges: len(graph.Edges),
	}
	if len(graph.Nodes) == 0 {
		return summary
	}

	if n := len(graph.Nodes); n > 1 {
		summary.Density = float64(distinctLinks(graph)) / float64(n*(n-1))
	}

	summary.Cycles = DetectCycles(graph)
	summary.IsCyclic = len(summary.Cycles) > 0

	inDegree := make(map[string]int, len(graph.Nodes))
	outDegree := make(map[string]int, len(graph.Nodes))
	for _, e := range graph.Edges {
		inDegree[e.To]++
		outDegree[e.From]++
	}

	gGraph := toGonumGraph(graph)
	ranks := network.PageRankSparse(gGraph.directed, 0.85, 1e-6)

	ranked := make([]models.FileRank, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		ranked = append(ranked, models.FileRank{
			File:      node.ID,
			PageRank:  ranks[gGraph.nodeIDToID[node.ID]],
			InDegree:  inDegree[node.ID],
			OutDegree: outDegree[node.ID],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PageRank > ranked[j].PageRank
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	summary.TopFiles = ranked
	return summary
}
