// Package cli implements the featsweep command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/orbislab/featsweep/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "featsweep",
	Short: "Feature detector sweep driver for visual odometry",
	Long: `featsweep drives batch evaluations of feature detectors.

It iterates every configured detector over every dataset variant,
rewriting the external program's configuration files before each
trial, launching the program, and collecting its track outputs under
names that identify the combination that produced them.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
