package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <existing> <new>",
	Short: "Add a new directory entry pointing at an existing inode, incrementing its link count",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		existing := s.Resolve(args[0])
		newpath := s.Resolve(args[1])
		reportCommandError("link", newpath, s.FS.Link(existing, newpath))
		return nil
	},
}
