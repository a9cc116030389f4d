package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diskfs/go-diskfs/filesystem/ext2"
)

var unlinkCmd = &cobra.Command{
	Use:   "unlink <path>",
	Short: "Remove a directory entry, deallocating the inode once its link count reaches zero",
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
			reportCommandError("unlink", target, err)
			return nil
		}
		if info.IsDirectory() {
			reportCommandError("unlink", target, ext2.ErrIsADirectory)
			return nil
		}
		reportCommandError("unlink", target, s.FS.Remove(target))
		return nil
	},
}
