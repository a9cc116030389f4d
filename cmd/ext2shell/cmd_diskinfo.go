package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var diskinfoCmd = &cobra.Command{
	Use:   "diskinfo",
	Short: "Print superblock geometry and a per-group descriptor breakdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		printDiskInfo(s.FS, s.ImagePath)
		return nil
	},
}
