package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Allocate a regular-file inode with zero blocks and link it into its parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		target := s.Resolve(args[0])
		reportCommandError("create", target, s.FS.Mknod(target, 0, 0))
		return nil
	},
}
