package ext2

import "errors"

// User-recoverable errors: the command loop prints a diagnostic and continues.
var (
	ErrNotFound         = errors.New("no such file or directory")
	ErrNotADirectory    = errors.New("not a directory")
	ErrIsADirectory     = errors.New("is a directory")
	ErrExists           = errors.New("file exists")
	ErrNotEmpty         = errors.New("directory not empty")
	ErrIsNotRegularFile = errors.New("not a regular file")
	ErrNameTooLong      = errors.New("name too long")
)

// Fatal errors: invariant violations or exhaustion. The engine never exits the
// process itself; it is up to the caller (cmd/ext2shell) to decide whether a
// fatal error terminates the run.
var (
	ErrCorruptSuperblock  = errors.New("corrupt or unsupported superblock")
	ErrOutOfBlocks        = errors.New("out of blocks")
	ErrOutOfInodes        = errors.New("out of inodes")
	ErrUnaddressableBlock = errors.New("block index beyond maximum supported range")
	ErrShortIO            = errors.New("short read or write against backing storage")
)
