package ext2

import (
	"fmt"
	"time"

	"github.com/diskfs/go-diskfs/backend"
	"github.com/diskfs/go-diskfs/util/timestamp"
	"github.com/sirupsen/logrus"
)

// Create formats a fresh EXT2 filesystem into the given backend and mounts
// it: superblock, group
// descriptor table, block/inode bitmaps, root directory and lost+found are
// all laid out before the mount returns.
func Create(b backend.Storage, size, start int64, blockSize uint32, params *Params, opts ...Option) (*FileSystem, error) {
	if params == nil {
		params = &Params{}
	}
	if blockSize == 0 {
		blockSize = 1024
	}

	fs := &FileSystem{backend: b, size: size, start: start, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(fs)
	}

	blocksCount := uint32(size / int64(blockSize))
	if blocksCount == 0 {
		return nil, fmt.Errorf("%w: image too small for a single block", ErrCorruptSuperblock)
	}

	now := timestamp.GetTime()
	sb := newSuperblock(params, blocksCount, blockSize, now)
	fs.superblock = sb

	if err := fs.layoutGroups(); err != nil {
		return nil, err
	}
	if err := fs.writeSuperblock(); err != nil {
		return nil, err
	}
	if err := fs.formatRootAndLostFound(now); err != nil {
		return nil, err
	}

	fs.log.WithFields(logrus.Fields{
		"blockSize":  sb.blockSize,
		"groupCount": sb.groupCount,
		"blocksCount": sb.raw.BlocksCount,
	}).Info("formatted ext2 filesystem")

	return fs, nil
}

// layoutGroups carves out, for each group, its own block bitmap, inode
// bitmap and inode table within that group's own block range (group 0 also
// carries the group descriptor table immediately after the superblock), and
// marks every metadata block they occupy as used in that group's bitmap.
func (fs *FileSystem) layoutGroups() error {
	sb := fs.superblock
	bs := sb.blockSize

	gdtBlocks := ceilDivU32(sb.groupCount*uint32(groupDescriptorSize), bs)
	inodeTableBlocksPerGroup := ceilDivU32(sb.inodesPerGroup*uint32(sb.inodeSize()), bs)

	for group := uint32(0); group < sb.groupCount; group++ {
		firstBlockInGroup := sb.firstDataBlock() + group*sb.blocksPerGroup
		blocksInGroup := sb.blocksPerGroup
		if group == sb.groupCount-1 {
			total := sb.blocksCount() - firstBlockInGroup
			if total < blocksInGroup {
				blocksInGroup = total
			}
		}

		metaStart := firstBlockInGroup
		if group == 0 {
			metaStart = sb.gdtBlock() + gdtBlocks
		}
		blockBitmapBlock := metaStart
		inodeBitmapBlock := metaStart + 1
		inodeTableStart := metaStart + 2
		reservedBlocks := (inodeTableStart + inodeTableBlocksPerGroup) - firstBlockInGroup

		reservedInodes := uint32(0)
		if group == 0 {
			reservedInodes = sb.firstNonReservedInode() - 1
			if reservedInodes > sb.inodesPerGroup {
				reservedInodes = sb.inodesPerGroup
			}
		}

		gd := groupDescriptor{
			BlockBitmap:     blockBitmapBlock,
			InodeBitmap:     inodeBitmapBlock,
			InodeTable:      inodeTableStart,
			FreeBlocksCount: uint16(blocksInGroup),
			FreeInodesCount: uint16(sb.inodesPerGroup),
		}

		if err := fs.formatGroupBitmaps(group, gd, reservedBlocks, blocksInGroup, reservedInodes); err != nil {
			return err
		}
		gd.FreeBlocksCount -= uint16(reservedBlocks)
		gd.FreeInodesCount -= uint16(reservedInodes)

		if err := fs.writeGroupDescriptor(group, gd); err != nil {
			return err
		}
		sb.raw.FreeBlocksCount -= uint32(reservedBlocks)
		sb.raw.FreeInodesCount -= reservedInodes
	}
	return nil
}

// formatGroupBitmaps marks each group's own metadata blocks used in its
// block bitmap, and, for group 0 only, marks the reserved inode range
// (1..firstNonReservedInode-1) used in its inode bitmap — real EXT2 keeps all
// reserved inodes in group 0; groups 1+ start with every inode free.
func (fs *FileSystem) formatGroupBitmaps(group uint32, gd groupDescriptor, reservedBlocks, blocksInGroup, reservedInodes uint32) error {
	bs := fs.blockSize()

	blockBM := make([]byte, bs)
	for i := uint32(0); i < reservedBlocks && i < blocksInGroup; i++ {
		setBit(blockBM, int(i))
	}
	for i := blocksInGroup; i < bs*8; i++ {
		setBit(blockBM, int(i))
	}
	if err := fs.writeBlock(gd.BlockBitmap, blockBM); err != nil {
		return err
	}

	inodeBM := make([]byte, bs)
	for i := uint32(0); i < reservedInodes; i++ {
		setBit(inodeBM, int(i))
	}
	for i := fs.superblock.inodesPerGroup; i < bs*8; i++ {
		setBit(inodeBM, int(i))
	}
	return fs.writeBlock(gd.InodeBitmap, inodeBM)
}

func setBit(b []byte, pos int) {
	b[pos/8] |= 1 << uint(pos%8)
}

// formatRootAndLostFound creates the root directory at RootInode and a
// lost+found directory as its child, matching what a freshly run mke2fs
// produces.
func (fs *FileSystem) formatRootAndLostFound(now time.Time) error {
	root := newInode(RootInode, defaultDirPerm, 0, 0, now)
	if err := fs.claimInode(RootInode); err != nil {
		return err
	}
	rootBlock, err := fs.allocateBlock()
	if err != nil {
		return err
	}
	if err := fs.writeBlock(rootBlock, fs.newDirectoryBlock(RootInode, RootInode)); err != nil {
		return err
	}
	root.block[0] = rootBlock
	root.blocksUsed = 1
	root.size = uint64(fs.blockSize())
	root.linksCount = 2
	if err := fs.writeInode(root); err != nil {
		return err
	}

	lf := newInode(lostAndFoundInode, defaultDirPerm, 0, 0, now)
	if err := fs.claimInode(lostAndFoundInode); err != nil {
		return err
	}
	lfBlock, err := fs.allocateBlock()
	if err != nil {
		return err
	}
	if err := fs.writeBlock(lfBlock, fs.newDirectoryBlock(lostAndFoundInode, RootInode)); err != nil {
		return err
	}
	lf.block[0] = lfBlock
	lf.blocksUsed = 1
	lf.size = uint64(fs.blockSize())
	lf.linksCount = 2
	if err := fs.writeInode(lf); err != nil {
		return err
	}

	if err := fs.appendEntry(root, "lost+found", lostAndFoundInode, directEntryDir); err != nil {
		return err
	}
	root.linksCount++
	return fs.writeInode(root)
}

// claimInode marks an already-known-number inode (root, lost+found) used in
// its group's inode bitmap; allocateInode is not used for these because
// their numbers are fixed by convention rather than chosen by the scanner.
func (fs *FileSystem) claimInode(number uint32) error {
	group, index := fs.inodeLocation(number)
	bm, gd, err := fs.readInodeBitmap(group)
	if err != nil {
		return err
	}
	already, err := bm.IsSet(int(index))
	if err != nil {
		return err
	}
	if already {
		return nil
	}
	if err := bm.Set(int(index)); err != nil {
		return err
	}
	buf := make([]byte, fs.blockSize())
	copy(buf, bm.ToBytes())
	if err := fs.writeBlock(gd.InodeBitmap, buf); err != nil {
		return err
	}
	gd.FreeInodesCount--
	gd.UsedDirsCount++
	if err := fs.writeGroupDescriptor(group, gd); err != nil {
		return err
	}
	return fs.adjustFreeInodes(-1)
}
