package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIoFileWriteReadRoundTrip(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 512)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)

	pattern := make([]byte, 13000)
	for i := range pattern {
		pattern[i] = byte(i % 256)
	}
	original := append([]byte(nil), pattern...)

	n, err := fs.ioFileWrite(ino, 0, pattern)
	require.NoError(t, err)
	require.Equal(t, len(pattern), n)
	require.EqualValues(t, len(pattern), ino.size)
	require.Equal(t, original, pattern, "ioFileWrite must not mutate the caller's buffer")

	out := make([]byte, len(pattern))
	n, err = fs.ioFileRead(ino, 0, out)
	require.NoError(t, err)
	require.Equal(t, len(pattern), n)
	require.Equal(t, pattern, out)
}

func TestIoFileReadClampsToSize(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)

	data := []byte("hello world")
	_, err = fs.ioFileWrite(ino, 0, data)
	require.NoError(t, err)

	out := make([]byte, 1024)
	n, err := fs.ioFileRead(ino, 0, out)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, out[:n])
}

func TestIoFileReadPastEndIsEmpty(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)
	_, err = fs.ioFileWrite(ino, 0, []byte("x"))
	require.NoError(t, err)

	out := make([]byte, 10)
	n, err := fs.ioFileRead(ino, 100, out)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestTruncateFileFreesBlocks(t *testing.T) {
	fs := newTestFileSystem(t, 1024, 64)
	ino, err := fs.allocateInode(defaultRegPerm, 0, 0)
	require.NoError(t, err)
	_, err = fs.ioFileWrite(ino, 0, make([]byte, 3000))
	require.NoError(t, err)
	require.NotZero(t, ino.blocksUsed)

	require.NoError(t, fs.truncateFile(ino))
	require.Zero(t, ino.size)
	require.Zero(t, ino.blocksUsed)
}
