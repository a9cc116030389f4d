package ext2

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirRecLenRoundsUpToFourByteBoundary(t *testing.T) {
	cases := map[int]uint16{
		0: 8,
		1: 12,
		2: 12,
		3: 12,
		4: 12,
		5: 16,
		255: 264,
	}
	for nameLen, want := range cases {
		require.Equal(t, want, dirRecLen(nameLen), "nameLen=%d", nameLen)
	}
}

func TestNewDirectoryBlockHasDotAndDotDot(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	buf := fs.newDirectoryBlock(7, 2)

	var names []string
	var inodes []uint32
	require.NoError(t, forEachEntry(buf, func(e directoryEntry) bool {
		if !e.isSentinel() {
			names = append(names, e.name)
			inodes = append(inodes, e.inode)
		}
		return true
	}))
	require.Equal(t, []string{".", ".."}, names)
	require.Equal(t, []uint32{7, 2}, inodes)
}

func TestAppendReadRemoveEntry(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	dir, err := fs.allocateInode(defaultDirPerm, 0, 0)
	require.NoError(t, err)
	block, err := fs.allocateBlock()
	require.NoError(t, err)
	require.NoError(t, fs.writeBlock(block, fs.newDirectoryBlock(dir.number, dir.number)))
	dir.block[0] = block
	dir.blocksUsed = 1
	dir.size = uint64(fs.blockSize())
	require.NoError(t, fs.writeInode(dir))

	require.NoError(t, fs.appendEntry(dir, "hello", 42, directEntryRegular))

	ok, err := fs.direntExists(dir, "hello")
	require.NoError(t, err)
	require.True(t, ok)

	e, _, err := fs.readEntry(dir, "hello")
	require.NoError(t, err)
	require.EqualValues(t, 42, e.inode)
	require.Equal(t, directEntryRegular, e.fileType)

	entries, err := fs.listEntries(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3) // ., .., hello

	require.NoError(t, fs.removeEntry(dir, "hello"))
	ok, err = fs.direntExists(dir, "hello")
	require.NoError(t, err)
	require.False(t, ok)

	empty, err := fs.isEmptyDirectory(dir)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestAppendEntryAllocatesNewBlockWhenFull(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 128)
	dir, err := fs.allocateInode(defaultDirPerm, 0, 0)
	require.NoError(t, err)
	block, err := fs.allocateBlock()
	require.NoError(t, err)
	require.NoError(t, fs.writeBlock(block, fs.newDirectoryBlock(dir.number, dir.number)))
	dir.block[0] = block
	dir.blocksUsed = 1
	dir.size = uint64(fs.blockSize())
	require.NoError(t, fs.writeInode(dir))

	// pack the first block with long names; once it runs out of free span,
	// appendEntry transparently allocates a fresh block instead of failing.
	longName := "this-is-a-long-enough-name-to-eat-up-the-block-fast"
	for count := 0; dir.blocksUsed == 1; count++ {
		name := fmt.Sprintf("%s-%03d", longName, count)
		require.NoError(t, fs.appendEntry(dir, name, 100+uint32(count), directEntryRegular))
		if count > 200 {
			t.Fatal("directory never grew past one block")
		}
	}
	require.EqualValues(t, 2, dir.blocksUsed)
}
