package main

import (
	"github.com/spf13/cobra"
)

// statCmd is a single-entry inodeinfo alias: the read-only convenience
// spec.md's distilled command list implies (ls on a non-directory already
// prints the same information) but never names directly.
var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Print one inode's metadata (alias of inodeinfo)",
	Args:  cobra.ExactArgs(1),
	RunE:  inodeinfoCmd.RunE,
}
