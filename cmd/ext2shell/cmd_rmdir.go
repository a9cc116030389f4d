package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diskfs/go-diskfs/filesystem/ext2"
)

var rmdirCmd = &cobra.Command{
	Use:   "rmdir <path>",
	Short: "Remove a directory, failing unless it contains only . and ..",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		target := s.Resolve(args[0])

		info, err := s.FS.Stat(target)
		if err != nil {
			reportCommandError("rmdir", target, err)
			return nil
		}
		if !info.IsDirectory() {
			reportCommandError("rmdir", target, ext2.ErrNotADirectory)
			return nil
		}
		reportCommandError("rmdir", target, s.FS.Remove(target))
		return nil
	},
}
