package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var blockbitmapCmd = &cobra.Command{
	Use:   "blockbitmap [group]",
	Short: "Hex-dump a block group's block bitmap (default group 0)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		group, err := parseGroupArg(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil
		}
		b, err := s.FS.BlockBitmap(group)
		if err != nil {
			reportCommandError("blockbitmap", fmt.Sprintf("group %d", group), err)
			return nil
		}
		printHexDump(b)
		return nil
	},
}

var inodebitmapCmd = &cobra.Command{
	Use:   "inodebitmap [group]",
	Short: "Hex-dump a block group's inode bitmap (default group 0)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		group, err := parseGroupArg(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil
		}
		b, err := s.FS.InodeBitmap(group)
		if err != nil {
			reportCommandError("inodebitmap", fmt.Sprintf("group %d", group), err)
			return nil
		}
		printHexDump(b)
		return nil
	},
}

func parseGroupArg(args []string) (uint32, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid group number %q: %w", args[0], err)
	}
	return uint32(n), nil
}
