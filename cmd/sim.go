package cmd

import (
	"fmt"

	"github.com/arvonet/dualroute/internal/obslog"
	"github.com/arvonet/dualroute/scenario"
	"github.com/arvonet/dualroute/state"
	"github.com/spf13/cobra"
)

var (
	simVerbose bool
	simLogPath string
)

var simCmd = &cobra.Command{
	Use:     "sim <scenario.yaml>",
	Short:   "Run a topology-and-script scenario and print converged routing tables",
	Args:    cobra.ExactArgs(1),
	GroupID: "sim",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}

		log, err := obslog.New(obslog.Options{Verbose: simVerbose, FilePath: simLogPath})
		if err != nil {
			return err
		}

		bus, err := scenario.Run(doc, log)
		if err != nil {
			return err
		}
		defer bus.Close()

		for _, id := range doc.Routers {
			node := bus.Node(state.NodeId(id))
			fmt.Println(node.DumpTable())
		}
		return nil
	},
}

func init() {
	simCmd.Flags().BoolVarP(&simVerbose, "verbose", "v", false, "enable debug logging")
	simCmd.Flags().StringVar(&simLogPath, "log-file", "", "additionally write plain-text logs to this file")
	rootCmd.AddCommand(simCmd)
}
