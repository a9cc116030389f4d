package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var rawblockCmd = &cobra.Command{
	Use:   "rawblock <n>",
	Short: "Hex-dump the raw bytes of block n",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rawblock: invalid block number %q: %v\n", args[0], err)
			return nil
		}
		b, err := s.FS.RawBlock(uint32(n))
		if err != nil {
			reportCommandError("rawblock", args[0], err)
			return nil
		}
		printHexDump(b)
		return nil
	},
}
