package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var inodeinfoCmd = &cobra.Command{
	Use:   "inodeinfo <path>",
	Short: "Print one file or directory's inode record",
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
			reportCommandError("inodeinfo", target, err)
			return nil
		}
		printInodeInfo(info)
		return nil
	},
}
