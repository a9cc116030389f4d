package ext2

import "strings"

// Every path accepted by the engine is absolute; the CLI
// shell is responsible for joining a relative argument against its tracked
// working directory before calling in.

// splitPath breaks an absolute path into its non-empty components. "/",
// "", and "//" all resolve to zero components (the root itself).
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolve walks path component by component from the root inode, returning
// the inode of the final component.
func (fs *FileSystem) resolve(path string) (*inode, error) {
	cur, err := fs.readInode(RootInode)
	if err != nil {
		return nil, err
	}
	for _, comp := range splitPath(path) {
		if !cur.isDirectory() {
			return nil, ErrNotADirectory
		}
		e, _, err := fs.readEntry(cur, comp)
		if err != nil {
			return nil, err
		}
		cur, err = fs.readInode(e.inode)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// resolveParent resolves every component of path except the last, returning
// the parent directory inode and the final component's name. It is the
// entry point used by every operation that creates or removes a single
// directory entry (mkdir, create, link, unlink, rmdir).
func (fs *FileSystem) resolveParent(path string) (*inode, string, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, "", ErrNotADirectory
	}
	parent, err := fs.resolve("/" + strings.Join(parts[:len(parts)-1], "/"))
	if err != nil {
		return nil, "", err
	}
	if !parent.isDirectory() {
		return nil, "", ErrNotADirectory
	}
	return parent, parts[len(parts)-1], nil
}

// exists reports whether path names a live directory entry.
func (fs *FileSystem) exists(path string) (bool, error) {
	_, err := fs.resolve(path)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
