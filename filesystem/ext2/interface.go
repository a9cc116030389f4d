package ext2

import (
	"io/fs"
	"os"
	"time"

	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/util/timestamp"
)

// Mkdir implements filesystem.FileSystem. Intermediate components must
// already exist, matching mkdir (not mkdir -p) semantics.
func (fs2 *FileSystem) Mkdir(pathname string) error {
	parent, name, err := fs2.resolveParent(pathname)
	if err != nil {
		return err
	}
	if ok, err := fs2.direntExists(parent, name); err != nil {
		return err
	} else if ok {
		return ErrExists
	}
	if len(name) > 255 {
		return ErrNameTooLong
	}

	child, err := fs2.allocateInode(defaultDirPerm, 0, 0)
	if err != nil {
		return err
	}
	block, err := fs2.allocateBlock()
	if err != nil {
		return err
	}
	if err := fs2.writeBlock(block, fs2.newDirectoryBlock(child.number, parent.number)); err != nil {
		return err
	}
	child.block[0] = block
	child.blocksUsed = 1
	child.size = uint64(fs2.blockSize())
	child.linksCount = 2
	if err := fs2.writeInode(child); err != nil {
		return err
	}

	if err := fs2.appendEntry(parent, name, child.number, directEntryDir); err != nil {
		if deallocErr := fs2.deallocateInode(child); deallocErr != nil {
			fs2.log.WithFields(map[string]interface{}{"inode": child.number, "error": deallocErr}).
				Error("leaked inode after failed mkdir")
		}
		return err
	}
	parent.linksCount++
	return fs2.writeInode(parent)
}

// Mknod implements filesystem.FileSystem. Only regular files are supported;
// device and FIFO nodes are outside the command surface this engine serves.
func (fs2 *FileSystem) Mknod(pathname string, mode uint32, dev int) error {
	parent, name, err := fs2.resolveParent(pathname)
	if err != nil {
		return err
	}
	if ok, err := fs2.direntExists(parent, name); err != nil {
		return err
	} else if ok {
		return ErrExists
	}
	child, err := fs2.allocateInode(defaultRegPerm, 0, 0)
	if err != nil {
		return err
	}
	child.linksCount = 1
	if err := fs2.writeInode(child); err != nil {
		return err
	}
	return fs2.appendEntry(parent, name, child.number, directEntryRegular)
}

// Link implements filesystem.FileSystem: newpath becomes a second directory
// entry pointing at oldpath's inode, and its link count is incremented.
func (fs2 *FileSystem) Link(oldpath, newpath string) error {
	target, err := fs2.resolve(oldpath)
	if err != nil {
		return err
	}
	if target.isDirectory() {
		return ErrIsADirectory
	}
	parent, name, err := fs2.resolveParent(newpath)
	if err != nil {
		return err
	}
	if ok, err := fs2.direntExists(parent, name); err != nil {
		return err
	} else if ok {
		return ErrExists
	}
	if err := fs2.appendEntry(parent, name, target.number, fileTypeForMode(target.mode)); err != nil {
		return err
	}
	target.linksCount++
	return fs2.writeInode(target)
}

// Symlink is outside the on-disk feature set this engine models (no
// EXT2_FT_SYMLINK block layout is implemented).
func (fs2 *FileSystem) Symlink(oldpath, newpath string) error {
	return filesystem.ErrNotSupported
}

// Chmod implements filesystem.FileSystem, replacing the permission bits
// while leaving the stored file-type bits untouched.
func (fs2 *FileSystem) Chmod(name string, mode os.FileMode) error {
	target, err := fs2.resolve(name)
	if err != nil {
		return err
	}
	target.mode = (target.mode & modeTypeMask) | uint16(mode.Perm())
	return fs2.writeInode(target)
}

// Chown implements filesystem.FileSystem. A uid or gid of -1 leaves that
// value unchanged.
func (fs2 *FileSystem) Chown(name string, uid, gid int) error {
	target, err := fs2.resolve(name)
	if err != nil {
		return err
	}
	if uid >= 0 {
		target.uid = uint16(uid)
	}
	if gid >= 0 {
		target.gid = uint16(gid)
	}
	return fs2.writeInode(target)
}

// ReadDir implements filesystem.FileSystem.
func (fs2 *FileSystem) ReadDir(pathname string) ([]os.FileInfo, error) {
	dir, err := fs2.resolve(pathname)
	if err != nil {
		return nil, err
	}
	if !dir.isDirectory() {
		return nil, ErrNotADirectory
	}
	entries, err := fs2.listEntries(dir)
	if err != nil {
		return nil, err
	}
	infos := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.name == "." || e.name == ".." {
			continue
		}
		child, err := fs2.readInode(e.inode)
		if err != nil {
			return nil, err
		}
		infos = append(infos, fileInfo{name: e.name, ino: child})
	}
	return infos, nil
}

// OpenFile implements filesystem.FileSystem.
func (fs2 *FileSystem) OpenFile(pathname string, flag int) (filesystem.File, error) {
	ino, err := fs2.resolve(pathname)
	if err == ErrNotFound {
		if flag&os.O_CREATE == 0 {
			return nil, ErrNotFound
		}
		parent, name, perr := fs2.resolveParent(pathname)
		if perr != nil {
			return nil, perr
		}
		child, aerr := fs2.allocateInode(defaultRegPerm, 0, 0)
		if aerr != nil {
			return nil, aerr
		}
		child.linksCount = 1
		if werr := fs2.writeInode(child); werr != nil {
			return nil, werr
		}
		if aerr := fs2.appendEntry(parent, name, child.number, directEntryRegular); aerr != nil {
			return nil, aerr
		}
		ino = child
	} else if err != nil {
		return nil, err
	}

	if ino.isDirectory() {
		return nil, ErrIsADirectory
	}
	if !ino.isRegular() {
		return nil, ErrIsNotRegularFile
	}
	if flag&os.O_TRUNC != 0 {
		if err := fs2.truncateFile(ino); err != nil {
			return nil, err
		}
	}
	return &openFile{fs: fs2, ino: ino, appendMode: flag&os.O_APPEND != 0}, nil
}

// Rename implements filesystem.FileSystem as an unlink-from-old plus
// link-into-new of the same inode number, matching the command surface's
// "cp semantics are separate from rename" split.
func (fs2 *FileSystem) Rename(oldpath, newpath string) error {
	oldParent, oldName, err := fs2.resolveParent(oldpath)
	if err != nil {
		return err
	}
	entry, _, err := fs2.readEntry(oldParent, oldName)
	if err != nil {
		return err
	}
	newParent, newName, err := fs2.resolveParent(newpath)
	if err != nil {
		return err
	}
	if ok, err := fs2.direntExists(newParent, newName); err != nil {
		return err
	} else if ok {
		return ErrExists
	}
	if err := fs2.appendEntry(newParent, newName, entry.inode, entry.fileType); err != nil {
		return err
	}
	if err := fs2.removeEntry(oldParent, oldName); err != nil {
		return err
	}

	if entry.fileType == directEntryDir && oldParent.number != newParent.number {
		moved, err := fs2.readInode(entry.inode)
		if err != nil {
			return err
		}
		if err := fs2.retargetDotDot(moved, newParent.number); err != nil {
			return err
		}
		oldParent.linksCount--
		if err := fs2.writeInode(oldParent); err != nil {
			return err
		}
		newParent.linksCount++
		if err := fs2.writeInode(newParent); err != nil {
			return err
		}
	}
	return nil
}

// Remove implements filesystem.FileSystem: unlink a file, or rmdir an empty
// directory (but never a non-empty one).
func (fs2 *FileSystem) Remove(pathname string) error {
	parent, name, err := fs2.resolveParent(pathname)
	if err != nil {
		return err
	}
	entry, _, err := fs2.readEntry(parent, name)
	if err != nil {
		return err
	}
	target, err := fs2.readInode(entry.inode)
	if err != nil {
		return err
	}

	if target.isDirectory() {
		empty, err := fs2.isEmptyDirectory(target)
		if err != nil {
			return err
		}
		if !empty {
			return ErrNotEmpty
		}
		if err := fs2.removeEntry(parent, name); err != nil {
			return err
		}
		parent.linksCount--
		if err := fs2.writeInode(parent); err != nil {
			return err
		}
		return fs2.deallocateInode(target)
	}

	if err := fs2.removeEntry(parent, name); err != nil {
		return err
	}
	target.linksCount--
	if target.linksCount == 0 {
		target.dtime = uint32(timestamp.GetTime().Unix())
		return fs2.deallocateInode(target)
	}
	return fs2.writeInode(target)
}

// Label implements filesystem.FileSystem.
func (fs2 *FileSystem) Label() string {
	return fs2.superblock.volumeName()
}

// SetLabel implements filesystem.FileSystem. EXT2 volume names are 16 bytes;
// longer labels are truncated.
func (fs2 *FileSystem) SetLabel(label string) error {
	if len(label) > 16 {
		label = label[:16]
	}
	setNulString(fs2.superblock.raw.VolumeName[:], label)
	return fs2.writeSuperblock()
}

// fileInfo adapts an inode to os.FileInfo for ReadDir.
type fileInfo struct {
	name string
	ino  *inode
}

func (f fileInfo) Name() string { return f.name }
func (f fileInfo) Size() int64  { return int64(f.ino.size) }
func (f fileInfo) Mode() fs.FileMode {
	m := fs.FileMode(f.ino.mode & 0o777)
	if f.ino.isDirectory() {
		m |= fs.ModeDir
	}
	return m
}
func (f fileInfo) ModTime() time.Time {
	return f.ino.mtime
}
func (f fileInfo) IsDir() bool      { return f.ino.isDirectory() }
func (f fileInfo) Sys() interface{} { return f.ino }
