package ext2_test

import (
	iofs "io/fs"
	"testing"

	"github.com/diskfs/go-diskfs/filesystem/ext2"
	"github.com/diskfs/go-diskfs/filesystem/internal/testutil"
	"github.com/diskfs/go-diskfs/testhelper"
)

// readDirFSAdapter adapts *ext2.FileSystem's absolute-path ReadDir onto the
// io/fs.ReadDirFS contract (dot-relative paths, no leading slash), so the
// kept directory-walk helper can exercise the engine directly.
type readDirFSAdapter struct {
	fs *ext2.FileSystem
}

func (a readDirFSAdapter) toAbsolute(name string) string {
	if name == "." {
		return "/"
	}
	return "/" + name
}

func (a readDirFSAdapter) Open(name string) (iofs.File, error) {
	if !iofs.ValidPath(name) {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrInvalid}
	}
	f, err := a.fs.OpenFile(a.toAbsolute(name), 0)
	if err != nil {
		return nil, err
	}
	return f.(iofs.File), nil
}

func (a readDirFSAdapter) ReadDir(name string) ([]iofs.DirEntry, error) {
	if !iofs.ValidPath(name) {
		return nil, &iofs.PathError{Op: "readdir", Path: name, Err: iofs.ErrInvalid}
	}
	infos, err := a.fs.ReadDir(a.toAbsolute(name))
	if err != nil {
		return nil, err
	}
	entries := make([]iofs.DirEntry, len(infos))
	for i, fi := range infos {
		entries[i] = iofs.FileInfoToDirEntry(fi)
	}
	return entries, nil
}

func TestDirectoryTreeHasNoCyclesOrIllegalEntries(t *testing.T) {
	const blockSize = 1024
	const blocks = 4096
	mem := testhelper.NewMemStorage(blockSize * blocks)
	fs, err := ext2.Create(mem, blockSize*blocks, 0, blockSize, &ext2.Params{VolumeName: "tree"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir /a: %v", err)
	}
	if err := fs.Mkdir("/a/b"); err != nil {
		t.Fatalf("Mkdir /a/b: %v", err)
	}

	testutil.TestFSTree(t, readDirFSAdapter{fs: fs})
}
