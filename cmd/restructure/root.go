// File: root.go
// Role: builds the root cobra command, grounded on stacktower's
// internal/cli/root.go: a --verbose flag toggles log level, and the chosen
// logger is attached to the command's context so every subcommand reaches it
// through restructure.LoggerFromContext rather than a package global.
package main

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cfgforge/restructure/restructure"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "restructure",
		Short:        "Restructure irreducible control-flow graphs into structured ASTs",
		Long:         `restructure runs a CFG region through the IDB/SingleExit, Untangle, Weave, and Inflate passes and emits a structured statement tree.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
			})
			cmd.SetContext(restructure.WithLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("restructure %s (%s)\n", version, commit))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())

	return root
}

func execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
