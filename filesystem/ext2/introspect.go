package ext2

import (
	"fmt"
	"time"
)

// Introspection accessors for the CLI's read-only diagnostic commands
// (diskinfo, inodeinfo, blockbitmap, inodebitmap, rawblock). Nothing here
// mutates the filesystem; they expose the geometry and records the engine
// already maintains internally.

// BlockSize returns the mounted filesystem's block size in bytes.
func (fs *FileSystem) BlockSize() uint32 { return fs.superblock.blockSize }

// GroupCount returns the number of block groups the image is divided into.
func (fs *FileSystem) GroupCount() uint32 { return fs.superblock.groupCount }

// BlocksCount returns the total number of blocks in the filesystem.
func (fs *FileSystem) BlocksCount() uint32 { return fs.superblock.blocksCount() }

// FreeBlocksCount returns the superblock's free-block counter.
func (fs *FileSystem) FreeBlocksCount() uint32 { return fs.superblock.raw.FreeBlocksCount }

// InodesCount returns the total number of inodes in the filesystem.
func (fs *FileSystem) InodesCount() uint32 { return fs.superblock.inodesCount() }

// FreeInodesCount returns the superblock's free-inode counter.
func (fs *FileSystem) FreeInodesCount() uint32 { return fs.superblock.raw.FreeInodesCount }

// BlocksPerGroup returns the configured blocks-per-group geometry value.
func (fs *FileSystem) BlocksPerGroup() uint32 { return fs.superblock.blocksPerGroup }

// InodesPerGroup returns the configured inodes-per-group geometry value.
func (fs *FileSystem) InodesPerGroup() uint32 { return fs.superblock.inodesPerGroup }

// LastMounted returns the last-mounted path string recorded in the
// superblock (empty on a freshly formatted image).
func (fs *FileSystem) LastMounted() string { return fs.superblock.lastMounted() }

// InodeInfo is a read-only snapshot of one inode record, for the
// inodeinfo/stat commands.
type InodeInfo struct {
	Number     uint32
	Mode       uint16
	UID        uint16
	GID        uint16
	Size       uint64
	LinksCount uint16
	BlocksUsed uint32
	ATime      time.Time
	CTime      time.Time
	MTime      time.Time
	Block      [pointersPerInode]uint32
}

func (i InodeInfo) IsDirectory() bool { return i.Mode&modeTypeMask == modeTypeDir }
func (i InodeInfo) IsRegular() bool   { return i.Mode&modeTypeMask == modeTypeRegular }

func newInodeInfo(ino *inode) InodeInfo {
	return InodeInfo{
		Number:     ino.number,
		Mode:       ino.mode,
		UID:        ino.uid,
		GID:        ino.gid,
		Size:       ino.size,
		LinksCount: ino.linksCount,
		BlocksUsed: ino.blocksUsed,
		ATime:      ino.atime,
		CTime:      ino.ctime,
		MTime:      ino.mtime,
		Block:      ino.block,
	}
}

// Stat resolves an absolute path and returns a snapshot of its inode.
func (fs *FileSystem) Stat(pathname string) (InodeInfo, error) {
	ino, err := fs.resolve(pathname)
	if err != nil {
		return InodeInfo{}, err
	}
	return newInodeInfo(ino), nil
}

// StatInode reads an inode record directly by number, for diagnostic tools
// that already hold a number (e.g. walking a directory listing).
func (fs *FileSystem) StatInode(number uint32) (InodeInfo, error) {
	ino, err := fs.readInode(number)
	if err != nil {
		return InodeInfo{}, err
	}
	return newInodeInfo(ino), nil
}

// BlockBitmap returns the raw bytes of one group's block bitmap.
func (fs *FileSystem) BlockBitmap(group uint32) ([]byte, error) {
	if group >= fs.superblock.groupCount {
		return nil, fmt.Errorf("group %d out of range (%d groups)", group, fs.superblock.groupCount)
	}
	bm, _, err := fs.readBlockBitmap(group)
	if err != nil {
		return nil, err
	}
	return bm.ToBytes(), nil
}

// InodeBitmap returns the raw bytes of one group's inode bitmap.
func (fs *FileSystem) InodeBitmap(group uint32) ([]byte, error) {
	if group >= fs.superblock.groupCount {
		return nil, fmt.Errorf("group %d out of range (%d groups)", group, fs.superblock.groupCount)
	}
	bm, _, err := fs.readInodeBitmap(group)
	if err != nil {
		return nil, err
	}
	return bm.ToBytes(), nil
}

// GroupDescriptorInfo is a read-only snapshot of one group's descriptor, for
// diskinfo's per-group breakdown.
type GroupDescriptorInfo struct {
	Group           uint32
	BlockBitmap     uint32
	InodeBitmap     uint32
	InodeTable      uint32
	FreeBlocksCount uint16
	FreeInodesCount uint16
	UsedDirsCount   uint16
}

// GroupDescriptor returns a snapshot of the given group's descriptor.
func (fs *FileSystem) GroupDescriptor(group uint32) (GroupDescriptorInfo, error) {
	if group >= fs.superblock.groupCount {
		return GroupDescriptorInfo{}, fmt.Errorf("group %d out of range (%d groups)", group, fs.superblock.groupCount)
	}
	gd, err := fs.readGroupDescriptor(group)
	if err != nil {
		return GroupDescriptorInfo{}, err
	}
	return GroupDescriptorInfo{
		Group:           group,
		BlockBitmap:     gd.BlockBitmap,
		InodeBitmap:     gd.InodeBitmap,
		InodeTable:      gd.InodeTable,
		FreeBlocksCount: gd.FreeBlocksCount,
		FreeInodesCount: gd.FreeInodesCount,
		UsedDirsCount:   gd.UsedDirsCount,
	}, nil
}

// RawBlock returns the raw bytes of block n, bypassing the null-sentinel
// check readBlock enforces elsewhere: the rawblock diagnostic command is
// explicitly allowed to dump block 0 (the boot block) too.
func (fs *FileSystem) RawBlock(n uint32) ([]byte, error) {
	buf := make([]byte, fs.blockSize())
	if err := fs.ioBytes(ioRead, int64(n)*int64(fs.blockSize()), buf); err != nil {
		return nil, err
	}
	return buf, nil
}
