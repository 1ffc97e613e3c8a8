package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeProject() string {
	return `Analyzes a JavaScript/TypeScript/JSX project: functions, variables, imports, classes, UI components and the call edges between them, with cross-file resolution and project metrics.

USE WHEN:
- Getting an overview of an unfamiliar JS/TS codebase
- Finding the most complex or most depended-on files
- Listing React components with their props, hooks, state and effects
- Locating functions nobody calls

INPUT:
- paths: files or directories on disk (default: current directory)
- files: inline {name, content} sources, analyzed instead of paths
- ref: analyze a git revision (branch, tag, hash) instead of the worktree

INTERPRETING RESULTS:
- complexity = 1 + branches, loops, switch cases, catch clauses, && and ||
- complexity > 5 counts as a high complexity function
- isCrossFile edges point at the first file that declares the callee name; duplicate names across files resolve to the earliest file
- files with parseError carry no entities and are counted in parseFailures
- graph.cycles lists groups of files that depend on each other`
}

func describeSource() string {
	return `Analyzes a single anonymous source text (named input.js) and returns its functions, variables, imports, dependency edges and metrics.

USE WHEN:
- Checking a snippet without writing it to disk
- Measuring the complexity of one function

INTERPRETING RESULTS:
- error is set when the text does not parse; every list is then empty`
}

func describeGraph() string {
	return `Builds the file dependency graph of a JavaScript/TypeScript project from resolved cross-file calls, JSX renders and constructor calls.

USE WHEN:
- Visualizing which files depend on which (format: mermaid)
- Finding dependency cycles between files
- Ranking central files by PageRank

INTERPRETING RESULTS:
- edge weight = number of cross-file references between the two files
- topFiles are ordered by PageRank; high in-degree files are shared dependencies
- scope "function" draws function nodes instead of files`
}
