package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/codescope/internal/vcs"
	"github.com/panbanda/codescope/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	require.NotNil(t, s.config)

	cfg := config.DefaultConfig()
	assert.Same(t, cfg, NewScanner(cfg).config)
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.jsx":                 "",
		"src/util.ts":                 "",
		"src/types.d.ts":              "",
		"src/vendor.min.js":           "",
		"README.md":                   "",
		"node_modules/react/index.js": "",
		"dist/out.js":                 "",
		"lib/index.mjs":               "",
	})

	files, err := NewScanner(nil).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/index.mjs", "src/app.jsx", "src/util.ts"}, relAll(t, root, files))
}

func TestScanDir_Include(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.ts":  "",
		"src/b.js":  "",
		"test/c.ts": "",
	})

	cfg := config.DefaultConfig()
	cfg.Include.Patterns = []string{"src/**/*.ts"}
	files, err := NewScanner(cfg).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, relAll(t, root, files))
}

func TestScanDir_Gitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	writeTree(t, root, map[string]string{
		".gitignore":        "generated/\n*.gen.js\n",
		"src/a.js":          "",
		"src/b.gen.js":      "",
		"generated/api.js":  "",
		"src/nested/ok.tsx": "",
	})

	files, err := NewScanner(nil).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.js", "src/nested/ok.tsx"}, relAll(t, root, files))

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	files, err = NewScanner(cfg).ScanDir(root)
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestScanPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.js":     "",
		"dir/b.ts": "",
		"notes.md": "",
	})

	files, err := NewScanner(nil).ScanPaths([]string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "notes.md"),
		filepath.Join(root, "dir"),
		filepath.Join(root, "a.js"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "dir/b.ts"}, relAll(t, root, files))

	_, err = NewScanner(nil).ScanPaths([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

type fakeTree struct {
	entries []vcs.TreeEntry
}

func (f fakeTree) Entries() ([]vcs.TreeEntry, error) { return f.entries, nil }
func (f fakeTree) File(string) ([]byte, error)       { return nil, nil }

func TestScanTree(t *testing.T) {
	tree := fakeTree{entries: []vcs.TreeEntry{
		{Path: "package.json"},
		{Path: "src/index.ts"},
		{Path: "node_modules/x/y.js"},
		{Path: "web/App.tsx"},
	}}
	files, err := NewScanner(nil).ScanTree(tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/index.ts", "web/App.tsx"}, files)
}

func TestFilterBySize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"small.js": "x", "big.js": "0123456789"})
	small := filepath.Join(root, "small.js")
	big := filepath.Join(root, "big.js")

	files, skipped := FilterBySize([]string{small, big}, 5)
	assert.Equal(t, []string{small}, files)
	assert.Equal(t, 1, skipped)

	files, skipped = FilterBySize([]string{small, big}, 0)
	assert.Len(t, files, 2)
	assert.Zero(t, skipped)
}

func TestIsWithinRoot(t *testing.T) {
	assert.True(t, isWithinRoot("/a/b/c", "/a/b"))
	assert.True(t, isWithinRoot("/a/b", "/a/b"))
	assert.False(t, isWithinRoot("/a/bc", "/a/b"))
	assert.False(t, isWithinRoot("/x", "/a/b"))
}
