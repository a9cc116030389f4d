package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	cases := map[string][]string{
		"/":        {},
		"":         {},
		"//":       {},
		"/a":       {"a"},
		"/a/b":     {"a", "b"},
		"/a/b/":    {"a", "b"},
		"a/b":      {"a", "b"},
	}
	for path, want := range cases {
		require.Equal(t, want, splitPath(path), "splitPath(%q)", path)
	}
}

func TestResolveWalksFromRoot(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)
	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mkdir("/a/b"))

	root, err := fs.resolve("/")
	require.NoError(t, err)
	require.EqualValues(t, RootInode, root.number)

	b, err := fs.resolve("/a/b")
	require.NoError(t, err)
	require.True(t, b.isDirectory())
}

func TestResolveMissingComponentIsNotFound(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)
	_, err := fs.resolve("/nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveThroughNonDirectoryFails(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)
	require.NoError(t, fs.Mknod("/f", 0, 0))
	_, err := fs.resolve("/f/child")
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestResolveParentSplitsFinalComponent(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)
	require.NoError(t, fs.Mkdir("/a"))

	parent, name, err := fs.resolveParent("/a/newfile")
	require.NoError(t, err)
	require.Equal(t, "newfile", name)
	require.True(t, parent.isDirectory())
}

func TestExists(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)
	require.NoError(t, fs.Mkdir("/a"))

	ok, err := fs.exists("/a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = fs.exists("/missing")
	require.NoError(t, err)
	require.False(t, ok)
}
