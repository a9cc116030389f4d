package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// stagingBufferSize bounds the chunk size cp streams through; it has no
// relationship to the mounted block size, matching spec.md §6's "a staging
// buffer" language.
const stagingBufferSize = 64 * 1024

var cpCmd = &cobra.Command{
	Use:   "cp <dest> <source>",
	Short: "Allocate a destination inode and copy a source file's bytes into it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		dest := s.Resolve(args[0])
		source := s.Resolve(args[1])

		src, err := s.FS.OpenFile(source, os.O_RDONLY)
		if err != nil {
			reportCommandError("cp", source, err)
			return nil
		}
		defer src.Close()

		dst, err := s.FS.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if err != nil {
			reportCommandError("cp", dest, err)
			return nil
		}
		defer dst.Close()

		buf := make([]byte, stagingBufferSize)
		if _, err := io.CopyBuffer(dst, src, buf); err != nil {
			reportCommandError("cp", dest, err)
		}
		return nil
	},
}
