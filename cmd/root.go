package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dualroute",
	Short: "DUAL distance-vector routing simulator",
	Long: `dualroute simulates a set of routers running a diffusing-update
distance-vector protocol over a static topology, plus an independent
shortest-path utility for a static weighted graph.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to happen
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "util",
		Title: "Utilities",
	})
}
