package testhelper

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/diskfs/go-diskfs/backend"
)

// MemStorage is an in-memory backend.Storage backed by a plain byte slice,
// used by filesystem/ext2 tests that need a full read/write round trip
// without touching the real filesystem.
type MemStorage struct {
	data []byte
	pos  int64
}

// NewMemStorage allocates a zeroed in-memory backend of the given size.
func NewMemStorage(size int64) *MemStorage {
	return &MemStorage{data: make([]byte, size)}
}

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memFileInfo{size: int64(len(m.data))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemStorage) ReadAt(b []byte, offset int64) (int, error) {
	if offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[offset:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) WriteAt(b []byte, offset int64) (int, error) {
	end := offset + int64(len(b))
	if end > int64(len(m.data)) {
		return 0, fmt.Errorf("write at %d, len %d: past end of %d-byte backing store", offset, len(b), len(m.data))
	}
	return copy(m.data[offset:end], b), nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *MemStorage) Close() error { return nil }

func (m *MemStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (m *MemStorage) Writable() (backend.WritableFile, error) {
	return m, nil
}

var _ backend.Storage = (*MemStorage)(nil)

type memFileInfo struct {
	size int64
}

func (m memFileInfo) Name() string       { return "memstorage" }
func (m memFileInfo) Size() int64        { return m.size }
func (m memFileInfo) Mode() fs.FileMode  { return 0o600 }
func (m memFileInfo) ModTime() time.Time { return time.Time{} }
func (m memFileInfo) IsDir() bool        { return false }
func (m memFileInfo) Sys() interface{}   { return nil }
