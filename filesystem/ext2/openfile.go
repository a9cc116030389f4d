package ext2

import (
	"io"
	"io/fs"
)

// openFile is the filesystem.File handle returned by OpenFile: a seekable
// cursor over one inode's logical byte stream, backed by ioFileRead and
// ioFileWrite.
type openFile struct {
	fs         *FileSystem
	ino        *inode
	pos        int64
	appendMode bool
}

func (f *openFile) Stat() (fs.FileInfo, error) {
	return fileInfo{name: "", ino: f.ino}, nil
}

func (f *openFile) Read(p []byte) (int, error) {
	n, err := f.fs.ioFileRead(f.ino, f.pos, p)
	f.pos += int64(n)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (f *openFile) Write(p []byte) (int, error) {
	if f.appendMode {
		f.pos = int64(f.ino.size)
	}
	n, err := f.fs.ioFileWrite(f.ino, f.pos, p)
	f.pos += int64(n)
	return n, err
}

func (f *openFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(f.ino.size) + offset
	default:
		return 0, fs.ErrInvalid
	}
	if f.pos < 0 {
		f.pos = 0
	}
	return f.pos, nil
}

func (f *openFile) Close() error {
	return nil
}

// ReadDir satisfies fs.ReadDirFile; openFile only ever wraps a regular
// file, so it always reports the mismatch.
func (f *openFile) ReadDir(n int) ([]fs.DirEntry, error) {
	return nil, ErrNotADirectory
}
