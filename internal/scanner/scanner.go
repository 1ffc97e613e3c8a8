// Package scanner finds analyzable source files on disk or in a git tree.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/codescope/internal/vcs"
	"github.com/panbanda/codescope/pkg/config"
	"github.com/panbanda/codescope/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore reads every .gitignore under the repository containing root.
// Matching is done on paths relative to that repository root.
func (s *Scanner) loadGitignore(root string) string {
	s.matchers = nil
	if !s.config.Exclude.Gitignore {
		return ""
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return ""
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return gitRoot
	}
	s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	return gitRoot
}

// isIgnored checks a path, relative to the git root, against .gitignore rules.
func (s *Scanner) isIgnored(relPath string, isDir bool) bool {
	if len(s.matchers) == 0 || relPath == "" || relPath == "." {
		return false
	}
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// accepts applies the config filters and language support to a path
// relative to the scan root.
func (s *Scanner) accepts(relPath string) bool {
	if !parser.IsSupported(relPath) {
		return false
	}
	if s.config.ShouldExclude(relPath) {
		return false
	}
	return s.config.ShouldInclude(relPath)
}

// ScanDir recursively scans a directory for source files.
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	gitRoot := s.loadGitignore(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		gitRel := relPath
		if gitRoot != "" {
			if abs, err := filepath.Abs(path); err == nil {
				if abs, err = filepath.EvalSymlinks(abs); err == nil {
					gitRel, _ = filepath.Rel(gitRoot, abs)
				}
			}
		}

		if d.IsDir() {
			if path != root && (slices.Contains(s.config.Exclude.Dirs, d.Name()) || s.isIgnored(gitRel, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isIgnored(gitRel, false) {
			return nil
		}
		if s.accepts(relPath) {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return strings.HasPrefix(absPath, root+string(filepath.Separator)) || absPath == root
}

// ScanPaths expands a mix of files and directories. Directories are scanned
// recursively; explicitly named files are kept when their language is
// supported, regardless of exclusion rules. Duplicates are dropped.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if parser.IsSupported(p) {
				add(p)
			}
			continue
		}
		files, err := s.ScanDir(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

// ScanTree lists the analyzable files of a git tree. Paths are relative to
// the repository root.
func (s *Scanner) ScanTree(tree vcs.Tree) ([]string, error) {
	entries, err := tree.Entries()
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if s.accepts(e.Path) {
			files = append(files, e.Path)
		}
	}
	return files, nil
}

// FilterBySize filters files that exceed the configured maximum size.
// Returns the filtered list and the count of files that were skipped.
// If maxSize is 0, returns the original list unchanged.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}

	return filtered, skipped
}
