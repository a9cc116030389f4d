package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cdCmd = &cobra.Command{
	Use:   "cd <path>",
	Short: "Change the tracked working directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		reportCommandError("cd", args[0], s.Cd(args[0]))
		return nil
	},
}

var pwdCmd = &cobra.Command{
	Use:   "pwd",
	Short: "Print the tracked working directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession(imageFlag(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(s.Pwd())
		return nil
	},
}
