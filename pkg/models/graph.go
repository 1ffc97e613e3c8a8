package models

// FileRank is one file's standing in the file dependency graph.
type FileRank struct {
	File      string  `json:"file" toon:"file"`
	PageRank  float64 `json:"pageRank" toon:"pageRank"`
	InDegree  int     `json:"inDegree" toon:"inDegree"`
	OutDegree int     `json:"outDegree" toon:"outDegree"`
}

// GraphSummary describes the graph of cross-file dependencies between files.
type GraphSummary struct {
	TotalNodes int        `json:"totalNodes" toon:"totalNodes"`
	TotalEdges int        `json:"totalEdges" toon:"totalEdges"`
	Density    float64    `json:"density" toon:"density"`
	IsCyclic   bool       `json:"isCyclic" toon:"isCyclic"`
	Cycles     [][]string `json:"cycles,omitempty" toon:"cycles,omitempty"`
	TopFiles   []FileRank `json:"topFiles,omitempty" toon:"topFiles,omitempty"`
}
