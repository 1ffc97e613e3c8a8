package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with two commits and returns its directory.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(files map[string]string, msg string) {
		for name, content := range files {
			path := filepath.Join(dir, name)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := wt.Add(name)
			require.NoError(t, err)
		}
		_, err := wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
	}

	commit(map[string]string{"src/a.js": "function a() {}"}, "first")
	commit(map[string]string{"src/a.js": "function a2() {}", "src/b.js": "b();"}, "second")
	return dir
}

func TestTree(t *testing.T) {
	dir := initRepo(t)
	repo, err := NewGitOpener().PlainOpenWithDetect(filepath.Join(dir, "src"))
	require.NoError(t, err)

	head, err := repo.Tree("HEAD")
	require.NoError(t, err)
	entries, err := head.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "src/a.js", entries[0].Path)
	assert.Equal(t, "src/b.js", entries[1].Path)

	content, err := head.File("src/a.js")
	require.NoError(t, err)
	assert.Equal(t, "function a2() {}", string(content))

	prev, err := repo.Tree("HEAD~1")
	require.NoError(t, err)
	content, err = prev.File("src/a.js")
	require.NoError(t, err)
	assert.Equal(t, "function a() {}", string(content))

	_, err = prev.File("src/b.js")
	assert.Error(t, err)
}

func TestTree_UnknownRevision(t *testing.T) {
	repo, err := NewGitOpener().PlainOpenWithDetect(initRepo(t))
	require.NoError(t, err)
	_, err = repo.Tree("no-such-branch")
	assert.Error(t, err)
}

func TestRoot(t *testing.T) {
	dir := initRepo(t)
	repo, err := DefaultOpener().PlainOpenWithDetect(dir)
	require.NoError(t, err)
	root, err := repo.Root()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), filepath.Clean(root))
}

func TestPlainOpenWithDetect_NotARepo(t *testing.T) {
	_, err := NewGitOpener().PlainOpenWithDetect(t.TempDir())
	assert.Error(t, err)
}
