package ext2

import (
	"fmt"

	"github.com/diskfs/go-diskfs/util/bitmap"
	"github.com/diskfs/go-diskfs/util/timestamp"
)

// Bitmap-backed block and inode allocation. The (group, byte, bit)
// decomposition is reused by every allocate/deallocate operation, and the
// byte-slice bit-twiddling itself is util/bitmap.Bitmap.

func (fs *FileSystem) readBlockBitmap(group uint32) (*bitmap.Bitmap, groupDescriptor, error) {
	gd, err := fs.readGroupDescriptor(group)
	if err != nil {
		return nil, gd, err
	}
	buf := make([]byte, fs.blockSize())
	if err := fs.readBlock(gd.BlockBitmap, buf); err != nil {
		return nil, gd, err
	}
	return bitmap.FromBytes(buf), gd, nil
}

func (fs *FileSystem) readInodeBitmap(group uint32) (*bitmap.Bitmap, groupDescriptor, error) {
	gd, err := fs.readGroupDescriptor(group)
	if err != nil {
		return nil, gd, err
	}
	buf := make([]byte, fs.blockSize())
	if err := fs.readBlock(gd.InodeBitmap, buf); err != nil {
		return nil, gd, err
	}
	return bitmap.FromBytes(buf), gd, nil
}

// allocateBlock scans groups in order for the first clear bit in the block
// bitmap, sets it, and returns the resulting physical block number. Bit i of
// a group's bitmap is block first_data_block + group*blocks_per_group + i, as
// laid out by layoutGroups. Block 0 is never allocated: with 1024-byte
// blocks it lies before first_data_block, and otherwise its bit is reserved.
func (fs *FileSystem) allocateBlock() (uint32, error) {
	for group := uint32(0); group < fs.superblock.groupCount; group++ {
		bm, gd, err := fs.readBlockBitmap(group)
		if err != nil {
			return 0, err
		}
		bit := bm.FirstFree(0)
		if bit < 0 {
			continue
		}
		if err := bm.Set(bit); err != nil {
			return 0, err
		}
		buf := make([]byte, fs.blockSize())
		copy(buf, bm.ToBytes())
		if err := fs.writeBlock(gd.BlockBitmap, buf); err != nil {
			return 0, err
		}

		freeBlock := fs.superblock.firstDataBlock() + uint32(bit) + group*fs.superblock.blocksPerGroup
		gd.FreeBlocksCount--
		if err := fs.writeGroupDescriptor(group, gd); err != nil {
			return 0, err
		}
		if err := fs.adjustFreeBlocks(-1); err != nil {
			return 0, err
		}
		fs.log.WithFields(map[string]interface{}{"block": freeBlock, "group": group}).Debug("allocated block")
		return freeBlock, nil
	}
	return 0, fmt.Errorf("%w: no free block in any of %d groups", ErrOutOfBlocks, fs.superblock.groupCount)
}

// deallocateBlock zeroes the block's content and clears its bitmap bit. It
// is a no-op for block 0, matching the NULL-sentinel convention.
func (fs *FileSystem) deallocateBlock(b uint32) error {
	if b == 0 {
		return nil
	}
	rel := b - fs.superblock.firstDataBlock()
	group := rel / fs.superblock.blocksPerGroup
	pos := int(rel % fs.superblock.blocksPerGroup)

	zero := make([]byte, fs.blockSize())
	if err := fs.writeBlock(b, zero); err != nil {
		return err
	}

	bm, gd, err := fs.readBlockBitmap(group)
	if err != nil {
		return err
	}
	if err := bm.Clear(pos); err != nil {
		return err
	}
	buf := make([]byte, fs.blockSize())
	copy(buf, bm.ToBytes())
	if err := fs.writeBlock(gd.BlockBitmap, buf); err != nil {
		return err
	}
	gd.FreeBlocksCount++
	if err := fs.writeGroupDescriptor(group, gd); err != nil {
		return err
	}
	return fs.adjustFreeBlocks(1)
}

// allocateInode scans inode bitmaps for the first clear bit, sets it, and
// writes a freshly initialized inode record. Returns a descriptive error
// when every group is exhausted rather than a magic sentinel value.
func (fs *FileSystem) allocateInode(mode uint16, uid, gid uint32) (*inode, error) {
	now := timestamp.GetTime()
	for group := uint32(0); group < fs.superblock.groupCount; group++ {
		bm, gd, err := fs.readInodeBitmap(group)
		if err != nil {
			return nil, err
		}
		bit := bm.FirstFree(0)
		if bit < 0 {
			continue
		}
		if err := bm.Set(bit); err != nil {
			return nil, err
		}
		buf := make([]byte, fs.blockSize())
		copy(buf, bm.ToBytes())
		if err := fs.writeBlock(gd.InodeBitmap, buf); err != nil {
			return nil, err
		}

		inodeNo := uint32(1) + uint32(bit) + group*fs.superblock.inodesPerGroup
		gd.FreeInodesCount--
		if mode&modeTypeMask == modeTypeDir {
			gd.UsedDirsCount++
		}
		if err := fs.writeGroupDescriptor(group, gd); err != nil {
			return nil, err
		}
		if err := fs.adjustFreeInodes(-1); err != nil {
			return nil, err
		}

		ino := newInode(inodeNo, mode, uid, gid, now)
		if err := fs.writeInode(ino); err != nil {
			return nil, err
		}
		fs.log.WithFields(map[string]interface{}{"inode": inodeNo, "group": group}).Debug("allocated inode")
		return ino, nil
	}
	return nil, fmt.Errorf("%w: no free inode in any of %d groups", ErrOutOfInodes, fs.superblock.groupCount)
}

// deallocateInode frees every block reachable from the inode's 15 pointers
// (via freeInodeBlocks, which also frees the index blocks), zeroes the inode record,
// and clears its bitmap bit.
func (fs *FileSystem) deallocateInode(i *inode) error {
	if err := fs.freeInodeBlocks(i); err != nil {
		return err
	}

	group := (i.number - 1) / fs.superblock.inodesPerGroup
	pos := int((i.number - 1) % fs.superblock.inodesPerGroup)

	wasDir := i.isDirectory()
	zeroed := &inode{number: i.number}
	if err := fs.writeInode(zeroed); err != nil {
		return err
	}

	bm, gd, err := fs.readInodeBitmap(group)
	if err != nil {
		return err
	}
	if err := bm.Clear(pos); err != nil {
		return err
	}
	buf := make([]byte, fs.blockSize())
	copy(buf, bm.ToBytes())
	if err := fs.writeBlock(gd.InodeBitmap, buf); err != nil {
		return err
	}
	gd.FreeInodesCount++
	if wasDir && gd.UsedDirsCount > 0 {
		gd.UsedDirsCount--
	}
	if err := fs.writeGroupDescriptor(group, gd); err != nil {
		return err
	}
	return fs.adjustFreeInodes(1)
}

func (fs *FileSystem) adjustFreeBlocks(delta int64) error {
	fs.superblock.raw.FreeBlocksCount = uint32(int64(fs.superblock.raw.FreeBlocksCount) + delta)
	return fs.writeSuperblock()
}

func (fs *FileSystem) adjustFreeInodes(delta int64) error {
	fs.superblock.raw.FreeInodesCount = uint32(int64(fs.superblock.raw.FreeInodesCount) + delta)
	return fs.writeSuperblock()
}

func (fs *FileSystem) writeSuperblock() error {
	b, err := fs.superblock.toBytes()
	if err != nil {
		return err
	}
	return fs.ioBytes(ioWrite, superblockOffset, b)
}
