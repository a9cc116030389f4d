package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/diskfs/go-diskfs/filesystem/ext2"
)

// userRecoverable mirrors spec.md §7's first error taxonomy: printed as a
// one-line diagnostic, command loop continues. Every other error out of the
// engine is an invariant violation or resource exhaustion and is fatal.
var userRecoverable = []error{
	ext2.ErrNotFound,
	ext2.ErrNotADirectory,
	ext2.ErrIsADirectory,
	ext2.ErrExists,
	ext2.ErrNotEmpty,
	ext2.ErrIsNotRegularFile,
	ext2.ErrNameTooLong,
}

// reportCommandError implements spec.md §7's dispatch: a user-recoverable
// error is printed as "verb: target: message" and swallowed (the command
// loop, whether REPL or a single cobra invocation, continues); anything
// else is a fatal invariant violation or allocation exhaustion and
// terminates the process non-zero.
func reportCommandError(verb, target string, err error) {
	if err == nil {
		return
	}
	for _, sentinel := range userRecoverable {
		if errors.Is(err, sentinel) {
			fmt.Printf("%s: %s: %v\n", verb, target, err)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "%s: %s: fatal: %v\n", verb, target, err)
	os.Exit(1)
}
