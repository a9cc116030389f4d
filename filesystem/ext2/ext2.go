// Package ext2 implements a user-space EXT2 engine: it reads and mutates
// on-disk superblock, group descriptor, bitmap, inode, directory and
// indirect-block structures against a backend.Storage byte stream, so that
// its operations produce the same bytes on disk that a kernel EXT2 driver
// would produce.
package ext2

import (
	"fmt"

	"github.com/diskfs/go-diskfs/backend"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/sirupsen/logrus"
)

// FileSystem is the mounted engine, threaded through every other
// component: it owns the backend storage handle and the derived geometry,
// and is never a package-level singleton.
type FileSystem struct {
	backend    backend.Storage
	start      int64
	size       int64
	superblock *superblock

	// log receives verbose diagnostics (allocator decisions, indirect-block
	// allocation); it defaults to the standard logrus logger but tests may
	// inject a discard logger.
	log logrus.FieldLogger
}

// Option configures a FileSystem at Read/Create time.
type Option func(*FileSystem)

// WithLogger overrides the default logrus logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(fs *FileSystem) { fs.log = log }
}

func (fs *FileSystem) blockSize() uint32 { return fs.superblock.blockSize }

func (fs *FileSystem) writable() (backend.WritableFile, error) {
	return fs.backend.Writable()
}

// Type implements filesystem.FileSystem.
func (fs *FileSystem) Type() filesystem.Type { return filesystem.TypeExt2 }

// RootInode is the fixed inode number of the filesystem root.
const RootInode = rootInodeNumber

// Read mounts an existing EXT2 image: it validates the superblock magic and
// derives geometry; group descriptors are read from disk on demand. size is the
// number of bytes the filesystem occupies and start is the byte offset
// within the backend at which it begins (0 for a whole-disk image, nonzero
// when mounting a filesystem embedded in a partition).
func Read(b backend.Storage, size, start int64, opts ...Option) (*FileSystem, error) {
	fs := &FileSystem{backend: b, size: size, start: start, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(fs)
	}

	sbBytes := make([]byte, superblockSize)
	if err := fs.ioBytes(ioRead, superblockOffset, sbBytes); err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	sb, err := superblockFromBytes(sbBytes)
	if err != nil {
		return nil, err
	}
	fs.superblock = sb

	fs.log.WithFields(logrus.Fields{
		"blockSize":  sb.blockSize,
		"groupCount": sb.groupCount,
		"blocksCount": sb.raw.BlocksCount,
	}).Debug("mounted ext2 filesystem")

	return fs, nil
}

// Close releases the backend storage handle.
func (fs *FileSystem) Close() error {
	return fs.backend.Close()
}

// Equal reports whether two FileSystem values are mounting the same backend
// at the same geometry - useful in tests.
func (fs *FileSystem) Equal(o *FileSystem) bool {
	if fs == nil || o == nil {
		return fs == o
	}
	return fs.backend == o.backend && fs.start == o.start && fs.size == o.size
}
