package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List directory entries, or describe a single file",
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
		runLs(s, s.Resolve(arg))
		return nil
	},
}

// runLs lists a directory's entries, or prints a single inodeinfo-style
// line when target names a regular file.
func runLs(s *Session, target string) {
	info, err := s.FS.Stat(target)
	if err != nil {
		reportCommandError("ls", target, err)
		return
	}
	if !info.IsDirectory() {
		w := newEntryWriter()
		printEntry(w, path.Base(target), info)
		w.Flush()
		return
	}

	entries, err := s.FS.ReadDir(target)
	if err != nil {
		reportCommandError("ls", target, err)
		return
	}
	w := newEntryWriter()
	printEntry(w, ".", info)
	parent := path.Dir(target)
	if parentInfo, err := s.FS.Stat(parent); err == nil {
		printEntry(w, "..", parentInfo)
	}
	for _, e := range entries {
		childInfo, err := s.FS.Stat(path.Join(target, e.Name()))
		if err != nil {
			reportCommandError("ls", path.Join(target, e.Name()), err)
			continue
		}
		printEntry(w, e.Name(), childInfo)
	}
	w.Flush()
}
