package main

import (
	"fmt"

	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem/ext2"
)

// session is the process-wide engine handle. It is mounted lazily, on the
// first command that needs it, and reused for every subsequent command
// within the same process (including every iteration of the interactive
// REPL) so the working directory and open backend handle survive across
// commands.
var session *Session

// openSession mounts the disk image at path as an EXT2 filesystem.
func openSession(path string) (*Session, error) {
	d, err := disk.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	fsys, err := d.GetFilesystem()
	if err != nil {
		return nil, fmt.Errorf("mounting %s: %w", path, err)
	}
	efs, ok := fsys.(*ext2.FileSystem)
	if !ok {
		return nil, fmt.Errorf("%s does not hold an ext2 filesystem", path)
	}
	return &Session{Disk: d, FS: efs, ImagePath: path}, nil
}

// requireSession returns the mounted session, mounting imagePath on first
// use. Every command except mkfs and menu goes through this.
func requireSession(imagePath string) (*Session, error) {
	if session != nil {
		return session, nil
	}
	if imagePath == "" {
		return nil, fmt.Errorf("no disk image given: pass --image or set EXT2SHELL_IMAGE")
	}
	s, err := openSession(imagePath)
	if err != nil {
		return nil, err
	}
	session = s
	return s, nil
}
