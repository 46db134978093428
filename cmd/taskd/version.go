package main

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "v0.0.0"
	gitCommit = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the taskd version",
		Run: func(cmd *cobra.Command, args []string) {
			bold := color.New(color.Bold)
			out := cmd.OutOrStdout()
			bold.Fprint(out, "taskd ")
			fmt.Fprintf(out, "%s (commit %s, %s)\n", version, gitCommit, runtime.Version())
		},
	}
}
