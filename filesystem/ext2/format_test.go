package ext2

import (
	"testing"

	"github.com/diskfs/go-diskfs/testhelper"
	"github.com/stretchr/testify/require"
)

func TestCreateProducesRootAndLostFound(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 512)

	root, err := fs.readInode(RootInode)
	require.NoError(t, err)
	require.True(t, root.isDirectory())
	require.EqualValues(t, 3, root.linksCount) // root's own '.' and '..', and lost+found's '..'

	entries, err := fs.listEntries(root)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.name)
	}
	require.Contains(t, names, ".")
	require.Contains(t, names, "..")
	require.Contains(t, names, "lost+found")

	lf, err := fs.readInode(lostAndFoundInode)
	require.NoError(t, err)
	require.True(t, lf.isDirectory())
}

func TestCreateRejectsTooSmallImage(t *testing.T) {
	mem := testhelper.NewMemStorage(100)
	_, err := Create(mem, 100, 0, 1024, &Params{})
	require.ErrorIs(t, err, ErrCorruptSuperblock)
}

func TestCreateThenReadRoundTrips(t *testing.T) {
	const blockSize = 1024
	const blocks = 512
	mem := testhelper.NewMemStorage(blockSize * blocks)

	created, err := Create(mem, blockSize*blocks, 0, blockSize, &Params{VolumeName: "roundtrip"})
	require.NoError(t, err)
	require.NoError(t, created.Mkdir("/a"))

	mounted, err := Read(mem, blockSize*blocks, 0)
	require.NoError(t, err)
	require.Equal(t, "roundtrip", mounted.Label())

	ok, err := mounted.exists("/a")
	require.NoError(t, err)
	require.True(t, ok)
}
