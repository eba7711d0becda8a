// Fibtrace - Forwarding Time Series Extraction
//
// A CLI tool that turns the device telemetry logs captured during BGP
// testbed experiments into canonical, causally-ordered time series of
// forwarding-table changes per (router, destination-prefix):
//   - replays captured BGP messages through a network model
//   - sequences the URIB and UFDM control-plane logs
//   - reconciles the IPFIB data-plane log with the UFDM timeline,
//     repairing clock-skew mis-ordering between the two logging points
//
// Examples:
//
//	fibtrace extract --data-root ./data                 # everything
//	fibtrace extract --data-root ./data --scenario del  # filter scenarios
//	fibtrace extract --data-root ./data --replace       # recompute outputs
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fibtrace-net/fibtrace/pkg/util"
	"github.com/fibtrace-net/fibtrace/pkg/version"
)

var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "fibtrace",
	Short:             "Forwarding time series extraction for BGP testbed experiments",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Fibtrace extracts canonical time series of forwarding-table changes from
the telemetry logs captured during BGP testbed experiments.

Each captured sample is processed independently: the per-source logs
(BGP messages, URIB, UFDM, IPFIB) are normalized, resolved against the
scenario's lookup context, and written as one trace file per source under
the sample's output directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return util.SetLogLevel(logLevel)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fibtrace", version.Info())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
}
