// Package source loads source files from the filesystem or a git revision
// into memory for analysis.
package source

import (
	"context"
	"os"
	"sync"

	"github.com/panbanda/codescope/internal/fileproc"
	"github.com/panbanda/codescope/internal/vcs"
	"github.com/panbanda/codescope/pkg/models"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// TreeSource reads files from a git tree.
// It is safe for concurrent use by multiple goroutines.
type TreeSource struct {
	tree vcs.Tree
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree.
func NewTree(tree vcs.Tree) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read implements ContentSource.
// It is safe for concurrent use.
func (t *TreeSource) Read(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.File(path)
}

// Load reads paths from src in parallel. The returned files keep the order of
// paths; unreadable files are left out and reported in the ProcessingErrors.
func Load(ctx context.Context, src ContentSource, paths []string, opts ...fileproc.Option) ([]models.SourceFile, *fileproc.ProcessingErrors) {
	return fileproc.ForEachPath(ctx, paths, func(path string) (models.SourceFile, error) {
		content, err := src.Read(path)
		if err != nil {
			return models.SourceFile{}, err
		}
		return models.SourceFile{Name: path, Content: string(content)}, nil
	}, opts...)
}
