package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/arvonet/dualroute/shortestpath"
	"github.com/spf13/cobra"
)

var spathCmd = &cobra.Command{
	Use:     "spath",
	Short:   "Compute a shortest path from vertex 1 over a graph read from stdin",
	GroupID: "util",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShortestPath(os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(spathCmd)
}

// runShortestPath reads "n e" then e lines of "u v w" from in, computes
// shortest paths from vertex 1, and prints the distance and path to
// vertex n.
func runShortestPath(in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)

	var n, e int
	if _, err := fmt.Fscan(r, &n, &e); err != nil {
		return fmt.Errorf("spath: malformed header: %w", err)
	}

	edges := make([]shortestpath.Edge, 0, e)
	for i := 0; i < e; i++ {
		var u, v, w int
		if _, err := fmt.Fscan(r, &u, &v, &w); err != nil {
			return fmt.Errorf("spath: malformed edge %d: %w", i, err)
		}
		edges = append(edges, shortestpath.Edge{U: u, V: v, Weight: w})
	}

	g, err := shortestpath.NewGraph(n, edges)
	if err != nil {
		return fmt.Errorf("spath: %w", err)
	}

	result := shortestpath.Dijkstra(g, 1)
	if !result.Reachable(n) {
		fmt.Fprintf(out, "No path found from router 1 to %d.\n", n)
		return nil
	}

	fmt.Fprintf(out, "Shortest distance to %d is: %d\n", n, int(result.Distance(n)))
	fmt.Fprint(out, "Path: ")
	for i, v := range result.Path(n) {
		if i > 0 {
			fmt.Fprint(out, " ")
		}
		fmt.Fprint(out, v)
	}
	fmt.Fprintln(out)
	return nil
}
