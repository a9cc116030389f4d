package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// indirectBoundaries returns the first logical block index of each range,
// matching the classification documented at the top of indirect.go.
func indirectBoundaries(fs *FileSystem) (direct, single, double, triple uint32) {
	p := fs.pointersPerBlock()
	return 0, directPointers, directPointers + p, directPointers + p + p*p
}

func TestLookupBlockAcrossAllRanges(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 2048)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)

	_, single, double, triple := indirectBoundaries(fs)

	for _, i := range []uint32{0, 5, directPointers - 1, single, single + 1, double, double + 1, triple, triple + 1} {
		phys, err := fs.allocateBlockAt(ino, i)
		require.NoErrorf(t, err, "allocateBlockAt(%d)", i)
		require.NotZerof(t, phys, "allocateBlockAt(%d)", i)

		got, err := fs.lookupBlock(ino, i)
		require.NoErrorf(t, err, "lookupBlock(%d)", i)
		require.Equalf(t, phys, got, "lookupBlock(%d) mismatch", i)
	}
}

func TestLookupBlockHoleReturnsZero(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)

	got, err := fs.lookupBlock(ino, 3)
	require.NoError(t, err)
	require.Zero(t, got)

	_, single, _, _ := indirectBoundaries(fs)
	got, err = fs.lookupBlock(ino, single+10)
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestLookupBlockBeyondTripleRangeFails(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)

	p := fs.pointersPerBlock()
	beyond := directPointers + p + p*p + p*p*p

	_, err = fs.lookupBlock(ino, beyond)
	require.ErrorIs(t, err, ErrUnaddressableBlock)
}

func TestFreeInodeBlocksClearsEveryRange(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 2048)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)

	_, single, double, triple := indirectBoundaries(fs)
	touched := []uint32{0, 5, single, double, triple}
	for _, i := range touched {
		_, err := fs.allocateBlockAt(ino, i)
		require.NoError(t, err)
	}
	require.NotZero(t, ino.blocksUsed)

	require.NoError(t, fs.freeInodeBlocks(ino))
	require.Zero(t, ino.blocksUsed)
	for _, b := range ino.block {
		require.Zero(t, b)
	}

	for _, i := range touched {
		got, err := fs.lookupBlock(ino, i)
		require.NoError(t, err)
		require.Zero(t, got)
	}
}
