package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
)

// treeCmd is a recursive ls, built entirely from the engine's path
// resolution and directory listing: no new core surface, matching
// SPEC_FULL.md's note that it is a pure composition of C6+C7.
var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Recursively list a directory's contents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		target := s.Resolve(arg)
		fmt.Println(target)
		runTree(s, target, "")
		return nil
	},
}

func runTree(s *Session, dir, prefix string) {
	entries, err := s.FS.ReadDir(dir)
	if err != nil {
		reportCommandError("tree", dir, err)
		return
	}
	for i, e := range entries {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(entries)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Printf("%s%s%s\n", prefix, connector, e.Name())
		if e.IsDir() {
			runTree(s, path.Join(dir, e.Name()), childPrefix)
		}
	}
}
