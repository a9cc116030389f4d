package ext2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	directPointers  = 12
	singleIndirectI = 12
	doubleIndirectI = 13
	tripleIndirectI  = 14
	pointersPerInode = 15

	modeTypeMask   uint16 = 0xF000
	modeTypeFIFO   uint16 = 0x1000
	modeTypeChar   uint16 = 0x2000
	modeTypeDir    uint16 = 0x4000
	modeTypeBlock  uint16 = 0x6000
	modeTypeRegular uint16 = 0x8000
	modeTypeSymlink uint16 = 0xA000
	modeTypeSocket uint16 = 0xC000

	defaultDirPerm uint16 = modeTypeDir | 0o755
	defaultRegPerm uint16 = modeTypeRegular | 0o644
)

// rawInode is the 128-byte on-disk EXT2 inode record (revision 0 layout; the
// OSD2 Linux extensions are preserved verbatim but not interpreted).
type rawInode struct {
	Mode         uint16
	UID          uint16
	SizeLow      uint32
	ATime        uint32
	CTime        uint32
	MTime        uint32
	DTime        uint32
	GID          uint16
	LinksCount   uint16
	BlocksLo     uint32 // 512-byte sector units, per real EXT2 layout
	Flags        uint32
	OSD1         uint32
	Block        [pointersPerInode]uint32
	Generation   uint32
	FileACL      uint32
	SizeHigh     uint32
	FragAddr     uint32
	OSD2         [12]byte
}

// inode is the in-memory view of an inode. blocksUsed is the logical data
// block count; the on-disk sector-unit field is derived from it at the
// structured-I/O boundary.
type inode struct {
	number     uint32
	mode       uint16
	uid        uint16
	gid        uint16
	size       uint64
	atime      time.Time
	ctime      time.Time
	mtime      time.Time
	dtime      uint32
	linksCount uint16
	blocksUsed uint32
	flags      uint32
	block      [pointersPerInode]uint32
	generation uint32
}

func (i *inode) isDirectory() bool  { return i.mode&modeTypeMask == modeTypeDir }
func (i *inode) isRegular() bool    { return i.mode&modeTypeMask == modeTypeRegular }
func (i *inode) live() bool         { return i.dtime == 0 }

func inodeFromBytes(b []byte, blockSize uint32, number uint32) (*inode, error) {
	if len(b) < binary.Size(rawInode{}) {
		return nil, fmt.Errorf("%w: inode buffer too short", ErrCorruptSuperblock)
	}
	var raw rawInode
	if err := binary.Read(bytes.NewReader(b[:binary.Size(rawInode{})]), binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSuperblock, err)
	}

	sectorsPerBlock := blockSize / 512
	if sectorsPerBlock == 0 {
		sectorsPerBlock = 1
	}

	ino := &inode{
		number:     number,
		mode:       raw.Mode,
		uid:        raw.UID,
		gid:        raw.GID,
		size:       uint64(raw.SizeHigh)<<32 | uint64(raw.SizeLow),
		atime:      time.Unix(int64(raw.ATime), 0).UTC(),
		ctime:      time.Unix(int64(raw.CTime), 0).UTC(),
		mtime:      time.Unix(int64(raw.MTime), 0).UTC(),
		dtime:      raw.DTime,
		linksCount: raw.LinksCount,
		blocksUsed: raw.BlocksLo / sectorsPerBlock,
		flags:      raw.Flags,
		block:      raw.Block,
		generation: raw.Generation,
	}
	return ino, nil
}

func (i *inode) toBytes(blockSize uint32) ([]byte, error) {
	sectorsPerBlock := blockSize / 512
	if sectorsPerBlock == 0 {
		sectorsPerBlock = 1
	}
	raw := rawInode{
		Mode:       i.mode,
		UID:        i.uid,
		SizeLow:    uint32(i.size),
		ATime:      uint32(i.atime.Unix()),
		CTime:      uint32(i.ctime.Unix()),
		MTime:      uint32(i.mtime.Unix()),
		DTime:      i.dtime,
		GID:        i.gid,
		LinksCount: i.linksCount,
		BlocksLo:   i.blocksUsed * sectorsPerBlock,
		Flags:      i.flags,
		Block:      i.block,
		Generation: i.generation,
		SizeHigh:   uint32(i.size >> 32),
	}
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newInode(number uint32, mode uint16, uid, gid uint32, now time.Time) *inode {
	return &inode{
		number:     number,
		mode:       mode,
		uid:        uint16(uid),
		gid:        uint16(gid),
		atime:      now,
		ctime:      now,
		mtime:      now,
		linksCount: 0,
		blocksUsed: 0,
	}
}
