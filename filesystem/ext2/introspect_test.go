package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntrospectGeometryMatchesFormatParams(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)

	require.EqualValues(t, 1024, fs.BlockSize())
	require.EqualValues(t, 256, fs.BlocksCount())
	require.NotZero(t, fs.GroupCount())
	require.NotZero(t, fs.InodesCount())
	require.LessOrEqual(t, fs.FreeBlocksCount(), fs.BlocksCount())
	require.LessOrEqual(t, fs.FreeInodesCount(), fs.InodesCount())
}

func TestStatAndStatInodeAgree(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)
	require.NoError(t, fs.Mkdir("/a"))

	byPath, err := fs.Stat("/a")
	require.NoError(t, err)
	require.True(t, byPath.IsDirectory())
	require.False(t, byPath.IsRegular())

	byNumber, err := fs.StatInode(byPath.Number)
	require.NoError(t, err)
	require.Equal(t, byPath, byNumber)
}

func TestBlockAndInodeBitmapRejectOutOfRangeGroup(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)

	_, err := fs.BlockBitmap(fs.GroupCount())
	require.Error(t, err)

	_, err = fs.InodeBitmap(fs.GroupCount())
	require.Error(t, err)

	bm, err := fs.BlockBitmap(0)
	require.NoError(t, err)
	require.NotEmpty(t, bm)
}

func TestGroupDescriptorRejectsOutOfRangeGroup(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)

	gd, err := fs.GroupDescriptor(0)
	require.NoError(t, err)
	require.EqualValues(t, 0, gd.Group)
	require.NotZero(t, gd.InodeTable)

	_, err = fs.GroupDescriptor(fs.GroupCount())
	require.Error(t, err)
}

func TestRawBlockReadsBootBlock(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 256)

	b, err := fs.RawBlock(0)
	require.NoError(t, err)
	require.Len(t, b, int(fs.BlockSize()))
}
