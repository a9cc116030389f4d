package main

import (
	"strings"

	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem/ext2"
)

// Session is the engine value threaded through every command: the mounted
// disk, its ext2 engine, and the CLI's own tracked working directory. Per
// the redesign guidance in spec.md §9, the working directory is an owned
// vector of path components rather than a linked parent/child chain;
// navigating up is a slice truncation, not a pointer walk.
type Session struct {
	Disk      *disk.Disk
	FS        *ext2.FileSystem
	ImagePath string
	cwd       []string
}

// Pwd renders the tracked working directory as an absolute path.
func (s *Session) Pwd() string {
	if len(s.cwd) == 0 {
		return "/"
	}
	return "/" + strings.Join(s.cwd, "/")
}

// Resolve joins a (possibly relative) command argument against the tracked
// working directory, collapsing "." and ".." components, the way every
// command surface in spec.md §6 expects its path argument prepared before
// it reaches the engine.
func (s *Session) Resolve(arg string) string {
	var comps []string
	if !strings.HasPrefix(arg, "/") {
		comps = append(comps, s.cwd...)
	}
	for _, p := range strings.Split(arg, "/") {
		switch p {
		case "", ".":
		case "..":
			if len(comps) > 0 {
				comps = comps[:len(comps)-1]
			}
		default:
			comps = append(comps, p)
		}
	}
	if len(comps) == 0 {
		return "/"
	}
	return "/" + strings.Join(comps, "/")
}

// Cd changes the tracked working directory, failing if the resolved target
// is not a directory.
func (s *Session) Cd(arg string) error {
	target := s.Resolve(arg)
	info, err := s.FS.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDirectory() {
		return ext2.ErrNotADirectory
	}
	if target == "/" {
		s.cwd = nil
		return nil
	}
	s.cwd = strings.Split(strings.TrimPrefix(target, "/"), "/")
	return nil
}
