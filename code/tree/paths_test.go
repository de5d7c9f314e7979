package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a.txt", "/a.txt"},
		{"/a.txt", "/a.txt"},
		{"docs/notes.md", "/docs/notes.md"},
		{"docs//notes.md", "/docs/notes.md"},
		{"/a/../b", "/b"},
		{"  spaced.txt ", "/spaced.txt"},
		{".", "/"},
		{"/", "/"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeRejectsEscapes(t *testing.T) {
	for _, in := range []string{"", "..", "../x", "a/../../x"} {
		_, err := Normalize(in)
		assert.Error(t, err, in)
	}
}

func TestParentAndBase(t *testing.T) {
	assert.Equal(t, "/", Parent("/a.txt"))
	assert.Equal(t, "/docs", Parent("/docs/notes.md"))
	assert.Equal(t, "notes.md", Base("/docs/notes.md"))
}

func TestIsAncestor(t *testing.T) {
	assert.True(t, IsAncestor("/", "/a"))
	assert.True(t, IsAncestor("/a", "/a/b"))
	assert.True(t, IsAncestor("/a", "/a/b/c"))
	assert.False(t, IsAncestor("/a", "/a"))
	assert.False(t, IsAncestor("/a", "/ab"))
	assert.False(t, IsAncestor("/a/b", "/a"))
}

func TestOSPath(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, root, OSPath(root, "/"))
	assert.NotEqual(t, root, OSPath(root, "/a.txt"))
}
