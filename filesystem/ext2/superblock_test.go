package ext2

import (
	"testing"

	"github.com/diskfs/go-diskfs/util/timestamp"
	"github.com/stretchr/testify/require"
)

func TestSuperblockRoundTrip(t *testing.T) {
	params := &Params{VolumeName: "testvol", BlocksPerGroup: 8192, InodeRatio: 8192}
	now := timestamp.GetTime()
	sb := newSuperblock(params, 16384, 1024, now)

	b, err := sb.toBytes()
	require.NoError(t, err)
	require.Len(t, b, superblockSize)

	got, err := superblockFromBytes(b)
	require.NoError(t, err)
	require.Equal(t, sb.raw, got.raw)
	require.Equal(t, sb.blockSize, got.blockSize)
	require.Equal(t, sb.blocksPerGroup, got.blocksPerGroup)
	require.Equal(t, sb.inodesPerGroup, got.inodesPerGroup)
	require.Equal(t, sb.groupCount, got.groupCount)
	require.Equal(t, "testvol", got.volumeName())
}

func TestSuperblockFromBytesRejectsBadMagic(t *testing.T) {
	sb := newSuperblock(&Params{}, 4096, 1024, timestamp.GetTime())
	sb.raw.Magic = 0x1234
	b, err := sb.toBytes()
	require.NoError(t, err)

	_, err = superblockFromBytes(b)
	require.ErrorIs(t, err, ErrCorruptSuperblock)
}

func TestSuperblockFromBytesRejectsShortBuffer(t *testing.T) {
	_, err := superblockFromBytes(make([]byte, 10))
	require.ErrorIs(t, err, ErrCorruptSuperblock)
}

func TestGdtBlockFollowsFirstDataBlock(t *testing.T) {
	sb := newSuperblock(&Params{}, 4096, 1024, timestamp.GetTime())
	require.EqualValues(t, 1, sb.firstDataBlock())
	require.EqualValues(t, 2, sb.gdtBlock())

	sb4k := newSuperblock(&Params{}, 4096, 4096, timestamp.GetTime())
	require.EqualValues(t, 0, sb4k.firstDataBlock())
	require.EqualValues(t, 1, sb4k.gdtBlock())
}

func TestGroupDescriptorRoundTrip(t *testing.T) {
	gd := groupDescriptor{
		BlockBitmap:     3,
		InodeBitmap:     4,
		InodeTable:      5,
		FreeBlocksCount: 100,
		FreeInodesCount: 50,
		UsedDirsCount:   2,
	}
	b, err := gd.toBytes()
	require.NoError(t, err)
	require.Len(t, b, groupDescriptorSize)

	got, err := groupDescriptorFromBytes(b)
	require.NoError(t, err)
	require.Equal(t, gd, got)
}

func TestInodeRoundTripConvertsBlocksUsedToSectors(t *testing.T) {
	now := timestamp.GetTime()
	ino := newInode(12, defaultRegPerm, 1000, 1000, now)
	ino.size = 5000
	ino.linksCount = 1
	ino.blocksUsed = 3
	ino.block[0] = 50
	ino.block[1] = 51
	ino.block[2] = 52

	const blockSize = 1024
	b, err := ino.toBytes(blockSize)
	require.NoError(t, err)

	got, err := inodeFromBytes(b, blockSize, 12)
	require.NoError(t, err)
	require.Equal(t, ino.mode, got.mode)
	require.Equal(t, ino.size, got.size)
	require.Equal(t, ino.linksCount, got.linksCount)
	require.Equal(t, ino.blocksUsed, got.blocksUsed)
	require.Equal(t, ino.block, got.block)

	// the on-disk field itself is in 512-byte sector units, not logical blocks.
	require.EqualValues(t, 3*(blockSize/512), rawInodeBlocksLo(t, b))
}

// rawInodeBlocksLo decodes just the BlocksLo field at its known offset to
// assert the sector-unit conversion independent of inodeFromBytes.
func rawInodeBlocksLo(t *testing.T, b []byte) uint32 {
	t.Helper()
	// Mode(2) UID(2) SizeLow(4) ATime(4) CTime(4) MTime(4) DTime(4) GID(2) LinksCount(2) = 28
	const offset = 28
	return leUint32(b[offset : offset+4])
}
