package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// menuCmd prints the verb list. It does not start the REPL; only the root
// command invoked with no subcommand on a TTY does that.
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List available commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range rootCmd.Commands() {
			if c.Hidden {
				continue
			}
			fmt.Printf("  %-28s %s\n", c.Use, c.Short)
		}
		return nil
	},
}

// runRepl mounts imagePath once and then repeatedly reads a line, splits it
// into fields, and re-executes the same cobra command tree against them:
// each iteration is program-order with the last, and the mounted session
// (including the tracked working directory) survives across lines.
func runRepl(imagePath string) {
	if _, err := requireSession(imagePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("ext2shell> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			fields := strings.Fields(line)
			if fields[0] == "exit" || fields[0] == "quit" {
				return
			}
			rootCmd.SetArgs(fields)
			if err := rootCmd.Execute(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		fmt.Print("ext2shell> ")
	}
}
