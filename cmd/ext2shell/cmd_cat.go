package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		target := s.Resolve(args[0])

		f, err := s.FS.OpenFile(target, os.O_RDONLY)
		if err != nil {
			reportCommandError("cat", target, err)
			return nil
		}
		defer f.Close()

		if _, err := io.Copy(os.Stdout, f); err != nil {
			reportCommandError("cat", target, err)
		}
		return nil
	},
}
