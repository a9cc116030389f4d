package ext2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	magicNumber       uint16 = 0xEF53
	superblockOffset  int64  = 1024
	superblockSize    int    = 1024
	minBlockLogSize   uint32 = 0 // 1024 << 0
	maxBlockLogSize   uint32 = 6 // 1024 << 6 == 65536
	rootInodeNumber   uint32 = 2
	lostAndFoundInode uint32 = 11
	defaultInodeRatio int64  = 8192
	defaultInodeSize  uint16 = 128
	stateClean        uint16 = 1
	errorsContinue    uint16 = 1
	creatorOSLinux    uint32 = 0
	revLevelDynamic   uint32 = 1
)

// rawSuperblock is the 1024-byte on-disk EXT2 superblock, decoded verbatim so
// that every byte round-trips even through fields this engine never changes.
type rawSuperblock struct {
	InodesCount        uint32
	BlocksCount        uint32
	ReservedBlocks     uint32
	FreeBlocksCount    uint32
	FreeInodesCount    uint32
	FirstDataBlock     uint32
	LogBlockSize       uint32
	LogFragSize        uint32
	BlocksPerGroup     uint32
	FragsPerGroup      uint32
	InodesPerGroup     uint32
	MTime              uint32
	WTime              uint32
	MountCount         uint16
	MaxMountCount      uint16
	Magic              uint16
	State              uint16
	Errors             uint16
	MinorRevLevel      uint16
	LastCheck          uint32
	CheckInterval      uint32
	CreatorOS          uint32
	RevLevel           uint32
	DefResUID          uint16
	DefResGID          uint16
	FirstInode         uint32
	InodeSize          uint16
	BlockGroupNr       uint16
	FeatureCompat      uint32
	FeatureIncompat    uint32
	FeatureRoCompat    uint32
	UUID               [16]byte
	VolumeName         [16]byte
	LastMounted        [64]byte
	AlgoBitmap         uint32
	PreallocBlocks     uint8
	PreallocDirBlocks  uint8
	_                  uint16
	JournalUUID        [16]byte
	JournalInum        uint32
	JournalDev         uint32
	LastOrphan         uint32
	HashSeed           [4]uint32
	DefHashVersion     uint8
	_                  [3]byte
	DefaultMountOpts   uint32
	FirstMetaBg        uint32
	Reserved           [760]byte
}

// superblock is the in-memory, derived view of the on-disk superblock plus
// the disk geometry invariants.
type superblock struct {
	raw rawSuperblock

	blockSize      uint32
	blocksPerGroup uint32
	inodesPerGroup uint32
	groupCount     uint32
}

func (sb *superblock) volumeName() string {
	return trimNulString(sb.raw.VolumeName[:])
}

func (sb *superblock) lastMounted() string {
	return trimNulString(sb.raw.LastMounted[:])
}

func (sb *superblock) blocksCount() uint32    { return sb.raw.BlocksCount }
func (sb *superblock) inodesCount() uint32    { return sb.raw.InodesCount }
func (sb *superblock) firstDataBlock() uint32 { return sb.raw.FirstDataBlock }
func (sb *superblock) inodeSize() uint16 {
	if sb.raw.InodeSize == 0 {
		return defaultInodeSize
	}
	return sb.raw.InodeSize
}
func (sb *superblock) firstNonReservedInode() uint32 {
	if sb.raw.FirstInode == 0 {
		return lostAndFoundInode
	}
	return sb.raw.FirstInode
}

func trimNulString(b []byte) string {
	idx := bytes.IndexByte(b, 0)
	if idx < 0 {
		return string(b)
	}
	return string(b[:idx])
}

func setNulString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, s)
}

// deriveGeometry fills in the fields derived from the raw fields, per the
// Disk Geometry invariant: block_size is a power of two >= 1024, and
// group_count * blocks_per_group >= block_count.
func (sb *superblock) deriveGeometry() error {
	if sb.raw.Magic != magicNumber {
		return fmt.Errorf("%w: magic %#x", ErrCorruptSuperblock, sb.raw.Magic)
	}
	if sb.raw.LogBlockSize > maxBlockLogSize {
		return fmt.Errorf("%w: log_block_size %d", ErrCorruptSuperblock, sb.raw.LogBlockSize)
	}
	if sb.raw.BlocksPerGroup == 0 || sb.raw.InodesPerGroup == 0 {
		return fmt.Errorf("%w: zero group geometry", ErrCorruptSuperblock)
	}

	sb.blockSize = 1024 << sb.raw.LogBlockSize
	sb.blocksPerGroup = sb.raw.BlocksPerGroup
	sb.inodesPerGroup = sb.raw.InodesPerGroup
	sb.groupCount = ceilDivU32(sb.raw.BlocksCount, sb.blocksPerGroup)
	if sb.groupCount == 0 {
		sb.groupCount = 1
	}
	return nil
}

// gdtBlock computes the block the group descriptor table begins at:
// first_data_block + 1, not a hardcoded block 2.
func (sb *superblock) gdtBlock() uint32 {
	return sb.firstDataBlock() + 1
}

func ceilDivU32(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) < superblockSize {
		return nil, fmt.Errorf("%w: superblock buffer too short (%d bytes)", ErrCorruptSuperblock, len(b))
	}
	sb := &superblock{}
	if err := binary.Read(bytes.NewReader(b[:superblockSize]), binary.LittleEndian, &sb.raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSuperblock, err)
	}
	if err := sb.deriveGeometry(); err != nil {
		return nil, err
	}
	return sb, nil
}

func (sb *superblock) toBytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, sb.raw); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) != superblockSize {
		return nil, fmt.Errorf("internal error: encoded superblock is %d bytes, want %d", len(out), superblockSize)
	}
	return out, nil
}

// newSuperblock builds the superblock for a freshly formatted image, per the
// format/mkfs path.
func newSuperblock(p *Params, blocksCount, blockSize uint32, now time.Time) *superblock {
	logBlockSize := uint32(0)
	for (1024 << logBlockSize) < blockSize {
		logBlockSize++
	}

	blocksPerGroup := p.BlocksPerGroup
	if blocksPerGroup == 0 {
		blocksPerGroup = blockSize * 8
	}
	inodeRatio := p.InodeRatio
	if inodeRatio == 0 {
		inodeRatio = defaultInodeRatio
	}

	groupCount := ceilDivU32(blocksCount, blocksPerGroup)
	if groupCount == 0 {
		groupCount = 1
	}

	inodesCount := p.InodeCount
	if inodesCount == 0 {
		totalBytes := int64(blocksCount) * int64(blockSize)
		inodesCount = uint32(totalBytes / inodeRatio)
		if inodesCount < lostAndFoundInode+1 {
			inodesCount = lostAndFoundInode + 1
		}
	}
	inodesPerGroup := ceilDivU32(inodesCount, groupCount)
	// round up to a full bitmap byte boundary, matching mke2fs behavior
	if inodesPerGroup%8 != 0 {
		inodesPerGroup += 8 - inodesPerGroup%8
	}
	inodesCount = inodesPerGroup * groupCount

	sb := &superblock{}
	sb.raw = rawSuperblock{
		InodesCount:     inodesCount,
		BlocksCount:     blocksCount,
		ReservedBlocks:  blocksCount * uint32(p.reservedPercent()) / 100,
		FreeBlocksCount: blocksCount,
		FreeInodesCount: inodesCount,
		FirstDataBlock:  firstDataBlockFor(blockSize),
		LogBlockSize:    logBlockSize,
		LogFragSize:     logBlockSize,
		BlocksPerGroup:  blocksPerGroup,
		FragsPerGroup:   blocksPerGroup,
		InodesPerGroup:  inodesPerGroup,
		MTime:           uint32(now.Unix()),
		WTime:           uint32(now.Unix()),
		MaxMountCount:   0xFFFF,
		Magic:           magicNumber,
		State:           stateClean,
		Errors:          errorsContinue,
		CreatorOS:       creatorOSLinux,
		RevLevel:        revLevelDynamic,
		FirstInode:      lostAndFoundInode,
		InodeSize:       defaultInodeSize,
	}
	volUUID := p.UUID
	if volUUID == nil {
		generated := uuid.New()
		volUUID = &generated
	}
	copy(sb.raw.UUID[:], volUUID[:])
	setNulString(sb.raw.VolumeName[:], p.VolumeName)

	_ = sb.deriveGeometry()
	return sb
}

// firstDataBlock is 1 for 1024-byte blocks (there is a boot block occupying
// block 0) and 0 for larger block sizes (the boot sector and superblock both
// fit inside block 0).
func firstDataBlockFor(blockSize uint32) uint32 {
	if blockSize <= 1024 {
		return 1
	}
	return 0
}
