package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codestory/codestory/internal/controller"
	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/query"
)

func newNeighborhoodCommand() *cobra.Command {
	var maxEdges int
	cmd := &cobra.Command{
		Use:   "neighborhood <node-id>",
		Short: "One-hop neighborhood around a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNodeID(args[0])
			if err != nil {
				return err
			}
			c := openController()
			defer c.Close()

			resp, cerr := c.GraphNeighborhood(controller.GraphRequest{CenterID: id, MaxEdges: maxEdges})
			if cerr != nil {
				return cerr
			}
			return printGraphResponse(cmd, resp)
		},
	}
	cmd.Flags().IntVar(&maxEdges, "max-edges", 0, "edge cap (0 uses the engine default)")
	return cmd
}

func parseNodeID(s string) (graph.NodeID, error) {
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return graph.NodeID(n), nil
}

func printGraphResponse(cmd *cobra.Command, resp *query.GraphResponse) error {
	if globals.jsonOutput {
		enc := json.NewEncoder(cmdOut(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	out := cmdOut(cmd)
	fmt.Fprintf(out, "nodes: %d  edges: %d  truncated: %v\n", len(resp.Nodes), len(resp.Edges), resp.Truncated)
	for _, n := range resp.Nodes {
		fmt.Fprintf(out, "  [%d] %-10s %s\n", n.ID, n.Kind, n.SerializedName)
	}
	for _, e := range resp.Edges {
		label := "unresolved"
		if e.Confidence != nil {
			label = certaintyLabel(*e.Confidence)
		}
		fmt.Fprintf(out, "  %d -[%s]-> %d  %s\n", e.EffectiveSource(), e.Kind, e.EffectiveTarget(), label)
	}
	if len(resp.Path) > 0 {
		fmt.Fprintf(out, "path: %v\n", resp.Path)
	}
	return nil
}
