package ext2

import (
	"testing"

	"github.com/diskfs/go-diskfs/testhelper"
	"github.com/stretchr/testify/require"
)

// newTestFileSystem formats a small in-memory image and returns the mounted
// engine, sized generously enough for the indirect-addressing tests to reach
// every pointer level without allocating gigabytes of backing store.
func newTestFileSystem(t *testing.T, blockSize uint32, blocks int64) *FileSystem {
	t.Helper()
	mem := testhelper.NewMemStorage(int64(blockSize) * blocks)
	fs, err := Create(mem, int64(blockSize)*blocks, 0, blockSize, &Params{VolumeName: "t"})
	require.NoError(t, err)
	return fs
}

func TestAllocateDeallocateBlockRestoresBitmap(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)

	bmBefore, _, err := fs.readBlockBitmap(0)
	require.NoError(t, err)
	before := bmBefore.ToBytes()

	b, err := fs.allocateBlock()
	require.NoError(t, err)
	require.NotZero(t, b)

	require.NoError(t, fs.deallocateBlock(b))

	bmAfter, _, err := fs.readBlockBitmap(0)
	require.NoError(t, err)
	require.Equal(t, before, bmAfter.ToBytes())
}

func TestAllocateDeallocateInodeRestoresBitmap(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)

	bmBefore, _, err := fs.readInodeBitmap(0)
	require.NoError(t, err)
	before := bmBefore.ToBytes()

	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)
	require.NotZero(t, ino.number)

	require.NoError(t, fs.deallocateInode(ino))

	bmAfter, _, err := fs.readInodeBitmap(0)
	require.NoError(t, err)
	require.Equal(t, before, bmAfter.ToBytes())
}

func TestAllocateBlockNeverReturnsZero(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	seen := map[uint32]bool{}
	for i := 0; i < 10; i++ {
		b, err := fs.allocateBlock()
		require.NoError(t, err)
		require.NotZero(t, b)
		require.False(t, seen[b], "block %d allocated twice", b)
		seen[b] = true
	}
}

func TestAllocateBlockExhaustionIsDescriptive(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	var err error
	for i := 0; i < 10000; i++ {
		if _, err = fs.allocateBlock(); err != nil {
			break
		}
	}
	require.ErrorIs(t, err, ErrOutOfBlocks)
}
