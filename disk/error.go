package disk

import "fmt"

// UnknownFilesystemError is returned when a disk image does not carry a
// recognizable filesystem.
type UnknownFilesystemError struct {
	path string
}

func (e *UnknownFilesystemError) Error() string {
	return fmt.Sprintf("unknown or corrupt filesystem on %s", e.path)
}

func NewUnknownFilesystemError(path string) *UnknownFilesystemError {
	return &UnknownFilesystemError{path: path}
}
