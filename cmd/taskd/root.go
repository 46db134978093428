package main

import (
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
)

const envPrefix = "taskd"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskd",
		Short:         "Run jobs through a bounded concurrency scheduler",
		SilenceUsage:  true,
		SilenceErrors: false,
		// flags unset on the command line are filled from TASKD_* variables
		PersistentPreRunE: cobrautil.SyncViperPreRunE(envPrefix),
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())

	return root
}
