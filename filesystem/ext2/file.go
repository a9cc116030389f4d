package ext2

// ioFile reads or writes a logical byte window [offset,
// offset+len(buf)) against the data blocks reachable from ino, one block at
// a time, zero-filling reads against holes and never touching the caller's
// buffer on the write path beyond what was asked: writes never mutate the
// caller's slice.

func (fs *FileSystem) ioFileRead(ino *inode, offset int64, buf []byte) (int, error) {
	if offset >= int64(ino.size) {
		return 0, nil
	}
	toRead := int64(len(buf))
	if offset+toRead > int64(ino.size) {
		toRead = int64(ino.size) - offset
	}

	bs := int64(fs.blockSize())
	read := int64(0)
	for read < toRead {
		logical := (offset + read) / bs
		inBlock := uint32((offset + read) % bs)
		chunk := bs - int64(inBlock)
		if remaining := toRead - read; chunk > remaining {
			chunk = remaining
		}

		phys, err := fs.lookupBlock(ino, uint32(logical))
		if err != nil {
			return int(read), err
		}
		if err := fs.readBlockPart(phys, inBlock, uint32(chunk), buf[read:read+chunk]); err != nil {
			return int(read), err
		}
		read += chunk
	}
	return int(read), nil
}

// ioFileWrite writes len(data) bytes at offset, allocating blocks as needed
// and growing ino.size when the write extends past the current end of file.
// data is read only; it is never modified in place.
func (fs *FileSystem) ioFileWrite(ino *inode, offset int64, data []byte) (int, error) {
	bs := int64(fs.blockSize())
	written := int64(0)
	total := int64(len(data))

	for written < total {
		logical := (offset + written) / bs
		inBlock := uint32((offset + written) % bs)
		chunk := bs - int64(inBlock)
		if remaining := total - written; chunk > remaining {
			chunk = remaining
		}

		phys, err := fs.allocateBlockAt(ino, uint32(logical))
		if err != nil {
			return int(written), err
		}
		if err := fs.writeBlockPart(phys, inBlock, uint32(chunk), data[written:written+chunk]); err != nil {
			return int(written), err
		}
		written += chunk
	}

	if end := uint64(offset + written); end > ino.size {
		ino.size = end
	}
	return int(written), fs.writeInode(ino)
}

// truncateFile shrinks a file to zero length, freeing every data block it
// owned. Partial truncation is not needed by the command surface this
// engine serves.
func (fs *FileSystem) truncateFile(ino *inode) error {
	if err := fs.freeInodeBlocks(ino); err != nil {
		return err
	}
	ino.size = 0
	return fs.writeInode(ino)
}
