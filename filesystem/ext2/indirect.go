package ext2

import "fmt"

// Indirect block addressing. A logical block index i is classified into one
// of four ranges:
//
//	i < 12                                        -> direct pointer i
//	12 <= i < 12+P                                -> single indirect
//	12+P <= i < 12+P+P^2                          -> double indirect
//	12+P+P^2 <= i < 12+P+P^2+P^3                  -> triple indirect
//
// where P is pointersPerBlock (block_size / 4).

func (fs *FileSystem) pointersPerBlock() uint32 {
	return fs.blockSize() / 4
}

func (fs *FileSystem) readIndexBlock(block uint32) ([]uint32, error) {
	buf := make([]byte, fs.blockSize())
	if block == 0 {
		return make([]uint32, fs.pointersPerBlock()), nil
	}
	if err := fs.readBlock(block, buf); err != nil {
		return nil, err
	}
	ptrs := make([]uint32, fs.pointersPerBlock())
	for i := range ptrs {
		ptrs[i] = leUint32(buf[i*4 : i*4+4])
	}
	return ptrs, nil
}

func (fs *FileSystem) writeIndexBlock(block uint32, ptrs []uint32) error {
	buf := make([]byte, fs.blockSize())
	for i, p := range ptrs {
		putLeUint32(buf[i*4:i*4+4], p)
	}
	return fs.writeBlock(block, buf)
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLeUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// lookupBlock resolves logical block index i of inode to a physical block
// number, returning 0 (a hole) when no block is allocated at that index and
// no intermediate index block exists either.
func (fs *FileSystem) lookupBlock(ino *inode, i uint32) (uint32, error) {
	p := fs.pointersPerBlock()

	switch {
	case i < directPointers:
		return ino.block[i], nil

	case i < directPointers+p:
		return fs.lookupInIndex(ino.block[singleIndirectI], i-directPointers)

	case i < directPointers+p+p*p:
		i -= directPointers + p
		root := ino.block[doubleIndirectI]
		if root == 0 {
			return 0, nil
		}
		ptrs, err := fs.readIndexBlock(root)
		if err != nil {
			return 0, err
		}
		return fs.lookupInIndex(ptrs[i/p], i%p)

	case i < directPointers+p+p*p+p*p*p:
		i -= directPointers + p + p*p
		root := ino.block[tripleIndirectI]
		if root == 0 {
			return 0, nil
		}
		l1, err := fs.readIndexBlock(root)
		if err != nil {
			return 0, err
		}
		mid := l1[i/(p*p)]
		if mid == 0 {
			return 0, nil
		}
		l2, err := fs.readIndexBlock(mid)
		if err != nil {
			return 0, err
		}
		rem := i % (p * p)
		return fs.lookupInIndex(l2[rem/p], rem%p)

	default:
		return 0, fmt.Errorf("%w: logical block %d beyond triple indirect range", ErrUnaddressableBlock, i)
	}
}

func (fs *FileSystem) lookupInIndex(indexBlock, slot uint32) (uint32, error) {
	if indexBlock == 0 {
		return 0, nil
	}
	ptrs, err := fs.readIndexBlock(indexBlock)
	if err != nil {
		return 0, err
	}
	return ptrs[slot], nil
}

// allocateBlockAt ensures logical block index i of inode is backed by a
// physical block, allocating intermediate index blocks as needed, and
// returns the physical block number. It is the write-path counterpart of
// lookupBlock.
func (fs *FileSystem) allocateBlockAt(ino *inode, i uint32) (uint32, error) {
	p := fs.pointersPerBlock()

	switch {
	case i < directPointers:
		if ino.block[i] == 0 {
			b, err := fs.allocateBlock()
			if err != nil {
				return 0, err
			}
			ino.block[i] = b
			ino.blocksUsed++
		}
		return ino.block[i], nil

	case i < directPointers+p:
		root, err := fs.ensureIndexBlock(&ino.block[singleIndirectI], ino)
		if err != nil {
			return 0, err
		}
		return fs.allocateInIndex(root, i-directPointers, ino)

	case i < directPointers+p+p*p:
		i -= directPointers + p
		root, err := fs.ensureIndexBlock(&ino.block[doubleIndirectI], ino)
		if err != nil {
			return 0, err
		}
		ptrs, err := fs.readIndexBlock(root)
		if err != nil {
			return 0, err
		}
		mid, err := fs.ensureIndexBlock(&ptrs[i/p], ino)
		if err != nil {
			return 0, err
		}
		if err := fs.writeIndexBlock(root, ptrs); err != nil {
			return 0, err
		}
		return fs.allocateInIndex(mid, i%p, ino)

	case i < directPointers+p+p*p+p*p*p:
		i -= directPointers + p + p*p
		root, err := fs.ensureIndexBlock(&ino.block[tripleIndirectI], ino)
		if err != nil {
			return 0, err
		}
		l1, err := fs.readIndexBlock(root)
		if err != nil {
			return 0, err
		}
		mid, err := fs.ensureIndexBlock(&l1[i/(p*p)], ino)
		if err != nil {
			return 0, err
		}
		if err := fs.writeIndexBlock(root, l1); err != nil {
			return 0, err
		}
		l2, err := fs.readIndexBlock(mid)
		if err != nil {
			return 0, err
		}
		rem := i % (p * p)
		leaf, err := fs.ensureIndexBlock(&l2[rem/p], ino)
		if err != nil {
			return 0, err
		}
		if err := fs.writeIndexBlock(mid, l2); err != nil {
			return 0, err
		}
		return fs.allocateInIndex(leaf, rem%p, ino)

	default:
		return 0, fmt.Errorf("%w: logical block %d beyond triple indirect range", ErrUnaddressableBlock, i)
	}
}

// ensureIndexBlock allocates an intermediate pointer block if *ptr is a
// hole. It never touches ino.blocksUsed: that field counts leaf data blocks
// only, per the logical-block contract allocateInIndex and the direct-
// pointer case in allocateBlockAt maintain.
func (fs *FileSystem) ensureIndexBlock(ptr *uint32, ino *inode) (uint32, error) {
	if *ptr != 0 {
		return *ptr, nil
	}
	b, err := fs.allocateBlock()
	if err != nil {
		return 0, err
	}
	*ptr = b
	return b, nil
}

func (fs *FileSystem) allocateInIndex(indexBlock, slot uint32, ino *inode) (uint32, error) {
	ptrs, err := fs.readIndexBlock(indexBlock)
	if err != nil {
		return 0, err
	}
	if ptrs[slot] == 0 {
		b, err := fs.allocateBlock()
		if err != nil {
			return 0, err
		}
		ptrs[slot] = b
		ino.blocksUsed++
		if err := fs.writeIndexBlock(indexBlock, ptrs); err != nil {
			return 0, err
		}
	}
	return ptrs[slot], nil
}

// freeInodeBlocks frees every direct, single, double and triple indirect
// block reachable from inode, including the index blocks themselves.
func (fs *FileSystem) freeInodeBlocks(ino *inode) error {
	for i := 0; i < directPointers; i++ {
		if err := fs.deallocateBlock(ino.block[i]); err != nil {
			return err
		}
		ino.block[i] = 0
	}
	if err := fs.freeSingleIndirect(ino.block[singleIndirectI]); err != nil {
		return err
	}
	ino.block[singleIndirectI] = 0

	if err := fs.freeDoubleIndirect(ino.block[doubleIndirectI]); err != nil {
		return err
	}
	ino.block[doubleIndirectI] = 0

	if err := fs.freeTripleIndirect(ino.block[tripleIndirectI]); err != nil {
		return err
	}
	ino.block[tripleIndirectI] = 0

	ino.blocksUsed = 0
	return nil
}

func (fs *FileSystem) freeSingleIndirect(block uint32) error {
	if block == 0 {
		return nil
	}
	ptrs, err := fs.readIndexBlock(block)
	if err != nil {
		return err
	}
	for _, b := range ptrs {
		if err := fs.deallocateBlock(b); err != nil {
			return err
		}
	}
	return fs.deallocateBlock(block)
}

func (fs *FileSystem) freeDoubleIndirect(block uint32) error {
	if block == 0 {
		return nil
	}
	ptrs, err := fs.readIndexBlock(block)
	if err != nil {
		return err
	}
	for _, b := range ptrs {
		if err := fs.freeSingleIndirect(b); err != nil {
			return err
		}
	}
	return fs.deallocateBlock(block)
}

func (fs *FileSystem) freeTripleIndirect(block uint32) error {
	if block == 0 {
		return nil
	}
	ptrs, err := fs.readIndexBlock(block)
	if err != nil {
		return err
	}
	for _, b := range ptrs {
		if err := fs.freeDoubleIndirect(b); err != nil {
			return err
		}
	}
	return fs.deallocateBlock(block)
}
