package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	typestree "github.com/Voltaic314/DeskSweep/code/types/tree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDeterministicAndSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "bb")
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "docs", "notes.md"), "hi")

	snap, err := Scan(root)
	require.NoError(t, err)

	require.Len(t, snap.Root.Children, 3)
	assert.Equal(t, "a.txt", snap.Root.Children[0].Name)
	assert.Equal(t, "b.txt", snap.Root.Children[1].Name)
	assert.Equal(t, "docs", snap.Root.Children[2].Name)
	assert.Equal(t, typestree.Directory, snap.Root.Children[2].Kind)
	assert.Equal(t, int64(2), snap.Root.Children[1].Size)

	set := snap.Root.PathSet()
	assert.Equal(t, typestree.File, set["/docs/notes.md"])
	assert.Equal(t, typestree.Directory, set["/docs"])

	again, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, snap.Root, again.Root)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	_, ok := err.(*ScanError)
	assert.True(t, ok)
}

func TestScanRootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	writeFile(t, file, "x")

	_, err := Scan(file)
	require.Error(t, err)
	_, ok := err.(*ScanError)
	assert.True(t, ok)
}

func TestScanExcludesStateDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, ".desksweep", "journal-abc.jsonl"), "{}")

	snap, err := Scan(root, ".desksweep")
	require.NoError(t, err)

	set := snap.Root.PathSet()
	assert.Contains(t, set, "/a.txt")
	assert.NotContains(t, set, "/.desksweep")
	assert.NotContains(t, set, "/.desksweep/journal-abc.jsonl")
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.txt"), "s")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	snap, err := Scan(root)
	require.NoError(t, err)

	set := snap.Root.PathSet()
	assert.Equal(t, typestree.File, set["/link"])
	assert.NotContains(t, set, "/link/secret.txt")
}

func TestListing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "notes.md"), "hi")
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	snap, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[DIR] /docs",
		"[FILE] /a.txt",
		"[FILE] /docs/notes.md",
	}, snap.Listing())
}

func TestDiffPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	before, err := Scan(root)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.Rename(filepath.Join(root, "a.txt"), filepath.Join(root, "docs", "a.txt")))

	after, err := Scan(root)
	require.NoError(t, err)

	removed, added := DiffPaths(before.Root, after.Root)
	assert.Equal(t, []string{"/a.txt"}, removed)
	assert.Equal(t, []string{"/docs", "/docs/a.txt"}, added)
}
