package ext2

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const groupDescriptorSize int = 32

// groupDescriptor mirrors the 32-byte on-disk EXT2 block group descriptor.
// Each group owns exactly one block bitmap block, one inode bitmap
// block, and the start of its slice of the inode table.
type groupDescriptor struct {
	BlockBitmap     uint32
	InodeBitmap     uint32
	InodeTable      uint32
	FreeBlocksCount uint16
	FreeInodesCount uint16
	UsedDirsCount   uint16
	_               uint16
	Reserved        [12]byte
}

func groupDescriptorFromBytes(b []byte) (groupDescriptor, error) {
	if len(b) < groupDescriptorSize {
		return groupDescriptor{}, fmt.Errorf("%w: group descriptor buffer too short", ErrCorruptSuperblock)
	}
	var gd groupDescriptor
	if err := binary.Read(bytes.NewReader(b[:groupDescriptorSize]), binary.LittleEndian, &gd); err != nil {
		return groupDescriptor{}, fmt.Errorf("%w: %v", ErrCorruptSuperblock, err)
	}
	return gd, nil
}

func (gd groupDescriptor) toBytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, gd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
