package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Allocate a directory inode and data block, and link it into its parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		target := s.Resolve(args[0])
		reportCommandError("mkdir", target, s.FS.Mkdir(target))
		return nil
	},
}
