package graph

import (
	"strconv"
	"strings"
)

// Node represents a node in the dependency graph.
type Node struct {
	ID         string            `json:"id" toon:"id"`
	Name       string            `json:"name" toon:"name"`
	Type       NodeType          `json:"type" toon:"type"`
	File       string            `json:"file" toon:"file"`
	Line       uint32            `json:"line,omitempty" toon:"line,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" toon:"attributes,omitempty"`
}

// NodeType represents the type of graph node.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeFunction  NodeType = "function"
	NodeComponent NodeType = "component"
)

// String returns the string representation.
func (n NodeType) String() string {
	return string(n)
}

// Edge represents a dependency between nodes.
type Edge struct {
	From   string   `json:"from" toon:"from"`
	To     string   `json:"to" toon:"to"`
	Type   EdgeType `json:"type" toon:"type"`
	Weight float64  `json:"weight,omitempty" toon:"weight,omitempty"`
}

// EdgeType represents the type of dependency.
type EdgeType string

const (
	EdgeCall   EdgeType = "call"
	EdgeRender EdgeType = "render"
	EdgeNew    EdgeType = "new"
)

// String returns the string representation.
func (e EdgeType) String() string {
	return string(e)
}

// DependencyGraph represents the full graph structure.
type DependencyGraph struct {
	Nodes []Node `json:"nodes" toon:"nodes"`
	Edges []Edge `json:"edges" toon:"edges"`
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the graph.
func (g *DependencyGraph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the graph.
func (g *DependencyGraph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Scope determines the granularity of graph nodes.
type Scope string

const (
	ScopeFile     Scope = "file"
	ScopeFunction Scope = "function"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes       int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges       int              `json:"max_edges" toon:"max_edges"`
	ShowComplexity bool             `json:"show_complexity" toon:"show_complexity"`
	ShowWeights    bool             `json:"show_weights" toon:"show_weights"`
	NodeComplexity map[string]int   `json:"node_complexity,omitempty" toon:"node_complexity,omitempty"`
	Direction      MermaidDirection `json:"direction" toon:"direction"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD"
	DirectionLR MermaidDirection = "LR"
	DirectionBT MermaidDirection = "BT"
	DirectionRL MermaidDirection = "RL"
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:  50,
		MaxEdges:  150,
		Direction: DirectionLR,
	}
}

// ToMermaid generates Mermaid diagram syntax from the graph using default options.
func (g *DependencyGraph) ToMermaid() string {
	return g.ToMermaidWithOptions(DefaultMermaidOptions())
}

// ToMermaidWithOptions generates Mermaid diagram syntax with custom options.
// Nodes beyond MaxNodes are dropped together with their edges.
func (g *DependencyGraph) ToMermaidWithOptions(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}

	var b strings.Builder
	b.WriteString("graph " + string(direction) + "\n")

	nodes := g.Nodes
	edges := g.Edges
	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
		kept := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			kept[n.ID] = true
		}
		filtered := make([]Edge, 0, len(edges))
		for _, e := range edges {
			if kept[e.From] && kept[e.To] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if opts.MaxEdges > 0 && len(edges) > opts.MaxEdges {
		edges = edges[:opts.MaxEdges]
	}

	for _, node := range nodes {
		label := EscapeMermaidLabel(node.Name)
		if label == "" {
			label = EscapeMermaidLabel(node.ID)
		}
		id := SanitizeMermaidID(node.ID)
		b.WriteString("    " + id + "[\"" + label + "\"]\n")

		if opts.ShowComplexity && opts.NodeComplexity != nil {
			if complexity, ok := opts.NodeComplexity[node.ID]; ok {
				b.WriteString("    style " + id + " fill:" + complexityColor(complexity) + "\n")
			}
		}
	}

	for _, edge := range edges {
		arrow := edgeArrow(edge.Type)
		if opts.ShowWeights && edge.Weight > 1 {
			arrow = "-->|" + string(edge.Type) + " x" + strconv.Itoa(int(edge.Weight)) + "|"
		}
		b.WriteString("    " + SanitizeMermaidID(edge.From) + " " + arrow + " " + SanitizeMermaidID(edge.To) + "\n")
	}

	return b.String()
}

// edgeArrow returns the Mermaid arrow notation for an edge type.
func edgeArrow(t EdgeType) string {
	switch t {
	case EdgeCall:
		return "-->|calls|"
	case EdgeRender:
		return "-.->|renders|"
	case EdgeNew:
		return "-->|constructs|"
	default:
		return "-->"
	}
}

// complexityColor returns a fill color for a complexity level.
func complexityColor(complexity int) string {
	switch {
	case complexity <= 3:
		return "#90EE90"
	case complexity <= 7:
		return "#FFD700"
	case complexity <= 12:
		return "#FFA500"
	default:
		return "#FF6347"
	}
}

// SanitizeMermaidID makes an ID safe for Mermaid diagrams.
func SanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	result := make([]byte, 0, len(id)+1)
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if result[0] >= '0' && result[0] <= '9' {
		result = append([]byte{'n'}, result...)
	}
	return string(result)
}

var mermaidEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
	"|", "&#124;",
	"[", "&#91;",
	"]", "&#93;",
	"{", "&#123;",
	"}", "&#125;",
	"\n", "<br/>",
)

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	return mermaidEscaper.Replace(s)
}
