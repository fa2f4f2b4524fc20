// Package cli wires the trajmle command tree: flag parsing, log-level
// setup, and dispatch into the observations/config/covariance/solver/mle
// pipeline.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trajmle",
	Short: "Maximum-likelihood trajectory estimation for correlated-noise time series",
}

// Execute runs the root command, exiting with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(versionCmd)
}

// version is overwritten at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the trajmle version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version)
	},
}
