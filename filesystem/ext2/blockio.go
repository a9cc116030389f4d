package ext2

import (
	"fmt"
	"io"
)

// ioMode selects the direction of a structured I/O transfer.
type ioMode int

const (
	ioRead ioMode = iota
	ioWrite
)

// ioBytes seeks to an absolute offset on the backing image and transfers
// exactly len(buf) bytes, retrying until the transfer is exhausted. An
// unexpected end of stream is fatal.
func (fs *FileSystem) ioBytes(mode ioMode, offset int64, buf []byte) error {
	abs := fs.start + offset
	switch mode {
	case ioRead:
		read := 0
		for read < len(buf) {
			n, err := fs.backend.ReadAt(buf[read:], abs+int64(read))
			if n > 0 {
				read += n
			}
			if err != nil {
				if err == io.EOF && read == len(buf) {
					break
				}
				return fmt.Errorf("%w: read at %d: %v", ErrShortIO, abs, err)
			}
			if n == 0 {
				return fmt.Errorf("%w: read at %d: no progress", ErrShortIO, abs)
			}
		}
		return nil
	case ioWrite:
		w, err := fs.writable()
		if err != nil {
			return err
		}
		written := 0
		for written < len(buf) {
			n, err := w.WriteAt(buf[written:], abs+int64(written))
			if n > 0 {
				written += n
			}
			if err != nil {
				return fmt.Errorf("%w: write at %d: %v", ErrShortIO, abs, err)
			}
			if n == 0 {
				return fmt.Errorf("%w: write at %d: no progress", ErrShortIO, abs)
			}
		}
		return nil
	default:
		return fmt.Errorf("internal error: unknown io mode %d", mode)
	}
}

// readBlock and writeBlock transfer one whole block.
func (fs *FileSystem) readBlock(blockNo uint32, buf []byte) error {
	if blockNo == 0 {
		return fmt.Errorf("%w: block 0 is the null sentinel, cannot be read", ErrUnaddressableBlock)
	}
	if uint32(len(buf)) != fs.blockSize() {
		return fmt.Errorf("internal error: readBlock buffer is %d bytes, want %d", len(buf), fs.blockSize())
	}
	return fs.ioBytes(ioRead, int64(blockNo)*int64(fs.blockSize()), buf)
}

func (fs *FileSystem) writeBlock(blockNo uint32, buf []byte) error {
	if blockNo == 0 {
		return fmt.Errorf("%w: block 0 is the null sentinel, cannot be written", ErrUnaddressableBlock)
	}
	if uint32(len(buf)) != fs.blockSize() {
		return fmt.Errorf("internal error: writeBlock buffer is %d bytes, want %d", len(buf), fs.blockSize())
	}
	return fs.ioBytes(ioWrite, int64(blockNo)*int64(fs.blockSize()), buf)
}

// readBlockPart and writeBlockPart transfer part of a block.
func (fs *FileSystem) readBlockPart(blockNo uint32, offsetInBlock, length uint32, buf []byte) error {
	if offsetInBlock+length > fs.blockSize() {
		return fmt.Errorf("internal error: block_part [%d,%d) exceeds block size %d", offsetInBlock, offsetInBlock+length, fs.blockSize())
	}
	if blockNo == 0 {
		// a hole: it reads back as zeros.
		for i := range buf[:length] {
			buf[i] = 0
		}
		return nil
	}
	return fs.ioBytes(ioRead, int64(blockNo)*int64(fs.blockSize())+int64(offsetInBlock), buf[:length])
}

func (fs *FileSystem) writeBlockPart(blockNo uint32, offsetInBlock, length uint32, buf []byte) error {
	if offsetInBlock+length > fs.blockSize() {
		return fmt.Errorf("internal error: block_part [%d,%d) exceeds block size %d", offsetInBlock, offsetInBlock+length, fs.blockSize())
	}
	if blockNo == 0 {
		return fmt.Errorf("%w: cannot write to block 0", ErrUnaddressableBlock)
	}
	return fs.ioBytes(ioWrite, int64(blockNo)*int64(fs.blockSize())+int64(offsetInBlock), buf[:length])
}

// readGroupDescriptor and writeGroupDescriptor transfer one group's
// descriptor record from the group descriptor table, which begins at
// gdtBlock() (first_data_block + 1, not a hardcoded block number).
func (fs *FileSystem) readGroupDescriptor(groupNo uint32) (groupDescriptor, error) {
	if groupNo >= fs.superblock.groupCount {
		return groupDescriptor{}, fmt.Errorf("internal error: group %d out of range (%d groups)", groupNo, fs.superblock.groupCount)
	}
	buf := make([]byte, groupDescriptorSize)
	off := int64(fs.superblock.gdtBlock())*int64(fs.blockSize()) + int64(groupNo)*int64(groupDescriptorSize)
	if err := fs.ioBytes(ioRead, off, buf); err != nil {
		return groupDescriptor{}, err
	}
	return groupDescriptorFromBytes(buf)
}

func (fs *FileSystem) writeGroupDescriptor(groupNo uint32, gd groupDescriptor) error {
	if groupNo >= fs.superblock.groupCount {
		return fmt.Errorf("internal error: group %d out of range (%d groups)", groupNo, fs.superblock.groupCount)
	}
	b, err := gd.toBytes()
	if err != nil {
		return err
	}
	off := int64(fs.superblock.gdtBlock())*int64(fs.blockSize()) + int64(groupNo)*int64(groupDescriptorSize)
	return fs.ioBytes(ioWrite, off, b)
}

// inodeLocation computes the (group, table index) decomposition for an
// inode number.
func (fs *FileSystem) inodeLocation(inodeNo uint32) (group, index uint32) {
	group = (inodeNo - 1) / fs.superblock.inodesPerGroup
	index = (inodeNo - 1) % fs.superblock.inodesPerGroup
	return
}

// readInode and writeInode transfer one inode record.
func (fs *FileSystem) readInode(inodeNo uint32) (*inode, error) {
	if inodeNo == 0 {
		return nil, fmt.Errorf("internal error: inode 0 does not exist")
	}
	group, index := fs.inodeLocation(inodeNo)
	gd, err := fs.readGroupDescriptor(group)
	if err != nil {
		return nil, err
	}
	size := int64(fs.superblock.inodeSize())
	off := int64(gd.InodeTable)*int64(fs.blockSize()) + int64(index)*size
	buf := make([]byte, size)
	if err := fs.ioBytes(ioRead, off, buf); err != nil {
		return nil, err
	}
	return inodeFromBytes(buf, fs.blockSize(), inodeNo)
}

func (fs *FileSystem) writeInode(i *inode) error {
	group, index := fs.inodeLocation(i.number)
	gd, err := fs.readGroupDescriptor(group)
	if err != nil {
		return err
	}
	size := int64(fs.superblock.inodeSize())
	b, err := i.toBytes(fs.blockSize())
	if err != nil {
		return err
	}
	// pad/truncate to the on-disk inode record size (128-byte layout may be
	// smaller than a larger configured inode size; the remainder is reserved
	// space that stays zeroed).
	rec := make([]byte, size)
	copy(rec, b)
	off := int64(gd.InodeTable)*int64(fs.blockSize()) + int64(index)*size
	return fs.ioBytes(ioWrite, off, rec)
}
