// Package resolve links dependency edges to the files that declare their callees.
//
// Resolution is by name only: the first file (in input order) that declares a
// function or method name owns it, and import bindings are not consulted.
// Two files declaring the same name therefore resolve to whichever came
// first. Collisions are reported but never disambiguated.
package resolve

import (
	"log/slog"

	"github.com/panbanda/codescope/pkg/models"
)

// Collision records a declaration that lost to an earlier file.
type Collision struct {
	Name    string `json:"name"`
	Kept    string `json:"kept"`
	Ignored string `json:"ignored"`
}

// Index maps declared function and method names to their defining file.
type Index struct {
	defs       map[string]string
	collisions []Collision
}

// NewIndex builds the global symbol table over files in order.
func NewIndex(files []models.FileAnalysis) *Index {
	idx := &Index{defs: make(map[string]string)}
	for _, f := range files {
		for _, fn := range f.Functions {
			idx.add(fn.Name, f.FileName)
		}
	}
	return idx
}

func (i *Index) add(name, file string) {
	existing, ok := i.defs[name]
	if !ok {
		i.defs[name] = file
		return
	}
	if existing != file {
		i.collisions = append(i.collisions, Collision{Name: name, Kept: existing, Ignored: file})
	}
}

// Lookup returns the file that owns name.
func (i *Index) Lookup(name string) (string, bool) {
	file, ok := i.defs[name]
	return file, ok
}

// Len returns the number of indexed names.
func (i *Index) Len() int {
	return len(i.defs)
}

// Collisions returns names declared in more than one file.
func (i *Index) Collisions() []Collision {
	return i.collisions
}

// ResolveEdge rewrites e when its callee is declared in another file.
func (i *Index) ResolveEdge(e models.DependencyEdge) models.DependencyEdge {
	file, ok := i.defs[e.Callee]
	if !ok || file == e.File {
		e.CalleeFile = e.File
		e.IsCrossFile = false
		return e
	}
	e.CalleeFile = file
	e.IsCrossFile = true
	return e
}

// Resolve returns a resolved copy of edges.
func Resolve(idx *Index, edges []models.DependencyEdge) []models.DependencyEdge {
	out := make([]models.DependencyEdge, len(edges))
	for i, e := range edges {
		out[i] = idx.ResolveEdge(e)
	}
	return out
}

// Resolver runs the resolution pass over a batch of extracted files.
type Resolver struct {
	logger *slog.Logger
}

// Option is a functional option for configuring Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report name collisions.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a new resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFiles indexes files and returns copies whose dependency edges are
// resolved. The input slice is not modified.
func (r *Resolver) ResolveFiles(files []models.FileAnalysis) ([]models.FileAnalysis, *Index) {
	idx := NewIndex(files)
	for _, c := range idx.Collisions() {
		r.logger.Debug("ambiguous function name, keeping first declaration",
			"name", c.Name, "kept", c.Kept, "ignored", c.Ignored)
	}

	out := make([]models.FileAnalysis, len(files))
	for i, f := range files {
		f.Dependencies = Resolve(idx, f.Dependencies)
		out[i] = f
	}
	return out, idx
}
