// Command ext2shell is a small POSIX-like shell over a raw EXT2 disk image:
// each verb (ls, mkdir, create, cp, ...) is both a one-shot subcommand and,
// when no subcommand is given on an interactive terminal, a REPL verb.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verboseCount int

var rootCmd = &cobra.Command{
	Use:           "ext2shell",
	Short:         "A user-space shell for reading and mutating EXT2 disk images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case verboseCount >= 2:
			logrus.SetLevel(logrus.DebugLevel)
		case verboseCount == 1:
			logrus.SetLevel(logrus.InfoLevel)
		default:
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			runRepl(imageFlag(cmd))
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("image", "i", "", "path to the EXT2 disk image")
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "increase logging verbosity (-v, -vv)")
	_ = viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
	viper.SetEnvPrefix("EXT2SHELL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		lsCmd,
		mkdirCmd,
		rmdirCmd,
		createCmd,
		linkCmd,
		unlinkCmd,
		cpCmd,
		catCmd,
		cdCmd,
		pwdCmd,
		statCmd,
		treeCmd,
		diskinfoCmd,
		inodeinfoCmd,
		blockbitmapCmd,
		inodebitmapCmd,
		rawblockCmd,
		mkfsCmd,
		menuCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// imageFlag reads the --image flag (or EXT2SHELL_IMAGE env var via viper)
// off the invoking command.
func imageFlag(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("image"); v != "" {
		return v
	}
	return viper.GetString("image")
}
