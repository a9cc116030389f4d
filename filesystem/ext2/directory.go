package ext2

import (
	"fmt"
)

// File type tags carried in a directory entry, mirroring the on-disk
// file_type byte (filetype feature, revision 0 compatible).
const (
	directEntryUnknown  uint8 = 0
	directEntryRegular  uint8 = 1
	directEntryDir      uint8 = 2
	directEntryCharDev  uint8 = 3
	directEntryBlockDev uint8 = 4
	directEntryFIFO     uint8 = 5
	directEntrySocket   uint8 = 6
	directEntrySymlink  uint8 = 7

	direntHeaderSize = 8 // inode(4) + rec_len(2) + name_len(1) + file_type(1)
)

// directoryEntry is the in-memory view of one variable-length directory
// record. offset is its byte offset within the directory block it was read
// from, kept so callers can rewrite the record in place.
type directoryEntry struct {
	inode    uint32
	recLen   uint16
	nameLen  uint8
	fileType uint8
	name     string
	offset   uint32
}

// isSentinel reports whether the entry is the trailing unused record that
// pads a directory block out to its end (inode 0 is never a valid entry).
func (e directoryEntry) isSentinel() bool {
	return e.inode == 0
}

func fileTypeForMode(mode uint16) uint8 {
	switch mode & modeTypeMask {
	case modeTypeDir:
		return directEntryDir
	case modeTypeRegular:
		return directEntryRegular
	case modeTypeSymlink:
		return directEntrySymlink
	case modeTypeChar:
		return directEntryCharDev
	case modeTypeBlock:
		return directEntryBlockDev
	case modeTypeFIFO:
		return directEntryFIFO
	case modeTypeSocket:
		return directEntrySocket
	default:
		return directEntryUnknown
	}
}

// dirRecLen rounds a name's encoded record length up to the next 4-byte
// boundary.
func dirRecLen(nameLen int) uint16 {
	n := direntHeaderSize + nameLen
	return uint16((n + 3) &^ 3)
}

func readEntryAt(block []byte, offset uint32) (directoryEntry, error) {
	if int(offset)+direntHeaderSize > len(block) {
		return directoryEntry{}, fmt.Errorf("%w: directory entry header past block end", ErrCorruptSuperblock)
	}
	inode := leUint32(block[offset : offset+4])
	recLen := uint16(block[offset+4]) | uint16(block[offset+5])<<8
	nameLen := block[offset+6]
	fileType := block[offset+7]
	if recLen < direntHeaderSize || int(offset)+int(recLen) > len(block) {
		return directoryEntry{}, fmt.Errorf("%w: directory entry rec_len out of range", ErrCorruptSuperblock)
	}
	name := ""
	if nameLen > 0 {
		start := offset + direntHeaderSize
		name = string(block[start : start+uint32(nameLen)])
	}
	return directoryEntry{
		inode:    inode,
		recLen:   recLen,
		nameLen:  nameLen,
		fileType: fileType,
		name:     name,
		offset:   offset,
	}, nil
}

func writeEntryAt(block []byte, e directoryEntry) {
	off := e.offset
	putLeUint32(block[off:off+4], e.inode)
	block[off+4] = byte(e.recLen)
	block[off+5] = byte(e.recLen >> 8)
	block[off+6] = e.nameLen
	block[off+7] = e.fileType
	copy(block[off+direntHeaderSize:], []byte(e.name))
}

// forEachEntry walks every record (live or sentinel) in a single directory
// data block, stopping early if fn returns false.
func forEachEntry(block []byte, fn func(directoryEntry) bool) error {
	var off uint32
	for off < uint32(len(block)) {
		e, err := readEntryAt(block, off)
		if err != nil {
			return err
		}
		if !fn(e) {
			return nil
		}
		off += uint32(e.recLen)
	}
	return nil
}

// readEntry looks up a named entry in dir, scanning every allocated block.
// Returns ErrNotFound if absent.
func (fs *FileSystem) readEntry(dir *inode, name string) (directoryEntry, uint32, error) {
	blocks := dir.size / uint64(fs.blockSize())
	for b := uint32(0); uint64(b) < blocks; b++ {
		phys, err := fs.lookupBlock(dir, b)
		if err != nil {
			return directoryEntry{}, 0, err
		}
		if phys == 0 {
			continue
		}
		buf := make([]byte, fs.blockSize())
		if err := fs.readBlock(phys, buf); err != nil {
			return directoryEntry{}, 0, err
		}
		var found *directoryEntry
		_ = forEachEntry(buf, func(e directoryEntry) bool {
			if !e.isSentinel() && e.name == name {
				cp := e
				found = &cp
				return false
			}
			return true
		})
		if found != nil {
			return *found, b, nil
		}
	}
	return directoryEntry{}, 0, ErrNotFound
}

// direntExists reports whether name is present in dir.
func (fs *FileSystem) direntExists(dir *inode, name string) (bool, error) {
	_, _, err := fs.readEntry(dir, name)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// appendEntry inserts a new (name -> childInode) record into dir, splitting
// a large-enough free/sentinel record in an existing block, or allocating a
// fresh block holding the new record followed by a sentinel for the rest.
// Padding added when splitting a record always grows the trailing free span
// forward, never backward.
func (fs *FileSystem) appendEntry(dir *inode, name string, childInode uint32, fileType uint8) error {
	if len(name) > 255 {
		return ErrNameTooLong
	}
	needed := dirRecLen(len(name))
	blocks := dir.size / uint64(fs.blockSize())

	for b := uint32(0); uint64(b) < blocks; b++ {
		phys, err := fs.lookupBlock(dir, b)
		if err != nil {
			return err
		}
		if phys == 0 {
			continue
		}
		buf := make([]byte, fs.blockSize())
		if err := fs.readBlock(phys, buf); err != nil {
			return err
		}

		var target *directoryEntry
		_ = forEachEntry(buf, func(e directoryEntry) bool {
			used := uint16(0)
			if !e.isSentinel() {
				used = dirRecLen(int(e.nameLen))
			}
			if e.recLen-used >= needed {
				cp := e
				target = &cp
				return false
			}
			return true
		})
		if target == nil {
			continue
		}

		if target.isSentinel() {
			newEntry := directoryEntry{inode: childInode, recLen: needed, nameLen: uint8(len(name)), fileType: fileType, name: name, offset: target.offset}
			remaining := target.recLen - needed
			writeEntryAt(buf, newEntry)
			if remaining > 0 {
				sentinel := directoryEntry{inode: 0, recLen: remaining, nameLen: 0, fileType: 0, offset: target.offset + needed}
				writeEntryAt(buf, sentinel)
			}
		} else {
			used := dirRecLen(int(target.nameLen))
			newOffset := target.offset + used
			newEntry := directoryEntry{inode: childInode, recLen: target.recLen - used, nameLen: uint8(len(name)), fileType: fileType, name: name, offset: newOffset}
			shrunk := directoryEntry{inode: target.inode, recLen: used, nameLen: target.nameLen, fileType: target.fileType, name: target.name, offset: target.offset}
			writeEntryAt(buf, shrunk)
			writeEntryAt(buf, newEntry)
		}
		return fs.writeBlock(phys, buf)
	}

	// no existing block had room: allocate one and format it as a single
	// entry followed by a sentinel spanning the rest of the block.
	phys, err := fs.allocateBlockAt(dir, uint32(blocks))
	if err != nil {
		return err
	}
	buf := make([]byte, fs.blockSize())
	entry := directoryEntry{inode: childInode, recLen: needed, nameLen: uint8(len(name)), fileType: fileType, name: name, offset: 0}
	writeEntryAt(buf, entry)
	if remaining := uint16(fs.blockSize()) - needed; remaining > 0 {
		writeEntryAt(buf, directoryEntry{inode: 0, recLen: remaining, offset: needed})
	}
	if err := fs.writeBlock(phys, buf); err != nil {
		return err
	}
	dir.size = uint64(blocks+1) * uint64(fs.blockSize())
	return fs.writeInode(dir)
}

// removeEntry deletes name from dir by merging its span into the preceding
// record's rec_len (or, if it is the first record in the block, zeroing its
// inode number so it becomes a sentinel).
func (fs *FileSystem) removeEntry(dir *inode, name string) error {
	blocks := dir.size / uint64(fs.blockSize())
	for b := uint32(0); uint64(b) < blocks; b++ {
		phys, err := fs.lookupBlock(dir, b)
		if err != nil {
			return err
		}
		if phys == 0 {
			continue
		}
		buf := make([]byte, fs.blockSize())
		if err := fs.readBlock(phys, buf); err != nil {
			return err
		}

		var prevOffset uint32
		havePrev := false
		var target *directoryEntry
		_ = forEachEntry(buf, func(e directoryEntry) bool {
			if !e.isSentinel() && e.name == name {
				cp := e
				target = &cp
				return false
			}
			prevOffset = e.offset
			havePrev = true
			return true
		})
		if target == nil {
			continue
		}

		if havePrev {
			prev, err := readEntryAt(buf, prevOffset)
			if err != nil {
				return err
			}
			prev.recLen += target.recLen
			writeEntryAt(buf, prev)
		} else {
			writeEntryAt(buf, directoryEntry{inode: 0, recLen: target.recLen, offset: target.offset})
		}
		return fs.writeBlock(phys, buf)
	}
	return ErrNotFound
}

// listEntries returns every live (non-sentinel) record in dir, in on-disk
// order.
func (fs *FileSystem) listEntries(dir *inode) ([]directoryEntry, error) {
	var out []directoryEntry
	blocks := dir.size / uint64(fs.blockSize())
	for b := uint32(0); uint64(b) < blocks; b++ {
		phys, err := fs.lookupBlock(dir, b)
		if err != nil {
			return nil, err
		}
		if phys == 0 {
			continue
		}
		buf := make([]byte, fs.blockSize())
		if err := fs.readBlock(phys, buf); err != nil {
			return nil, err
		}
		if err := forEachEntry(buf, func(e directoryEntry) bool {
			if !e.isSentinel() {
				out = append(out, e)
			}
			return true
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// retargetDotDot rewrites dir's ".." entry to point at newParent. Rename
// calls this when a directory moves to a different parent, since the
// entry's own stored inode number would otherwise still name its old
// parent.
func (fs *FileSystem) retargetDotDot(dir *inode, newParent uint32) error {
	phys, err := fs.lookupBlock(dir, 0)
	if err != nil {
		return err
	}
	if phys == 0 {
		return fmt.Errorf("%w: directory missing its first block", ErrCorruptSuperblock)
	}
	buf := make([]byte, fs.blockSize())
	if err := fs.readBlock(phys, buf); err != nil {
		return err
	}
	var target *directoryEntry
	_ = forEachEntry(buf, func(e directoryEntry) bool {
		if !e.isSentinel() && e.name == ".." {
			cp := e
			target = &cp
			return false
		}
		return true
	})
	if target == nil {
		return fmt.Errorf("%w: directory missing \"..\" entry", ErrCorruptSuperblock)
	}
	target.inode = newParent
	writeEntryAt(buf, *target)
	return fs.writeBlock(phys, buf)
}

// isEmptyDirectory reports whether dir contains only "." and "..".
func (fs *FileSystem) isEmptyDirectory(dir *inode) (bool, error) {
	entries, err := fs.listEntries(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.name != "." && e.name != ".." {
			return false, nil
		}
	}
	return true, nil
}

// newDirectoryBlock formats a freshly allocated block as the first block of
// a new directory: "." pointing to self and ".." pointing to parent, with
// ".."'s rec_len spanning the rest of the block (no separate sentinel).
func (fs *FileSystem) newDirectoryBlock(self, parent uint32) []byte {
	buf := make([]byte, fs.blockSize())
	dot := directoryEntry{inode: self, recLen: dirRecLen(1), nameLen: 1, fileType: directEntryDir, name: ".", offset: 0}
	writeEntryAt(buf, dot)
	dotdot := directoryEntry{inode: parent, recLen: uint16(fs.blockSize()) - dot.recLen, nameLen: 2, fileType: directEntryDir, name: "..", offset: uint32(dot.recLen)}
	writeEntryAt(buf, dotdot)
	return buf
}
