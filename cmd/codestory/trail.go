package main

import (
	"github.com/spf13/cobra"

	"github.com/codestory/codestory/internal/controller"
)

func newTrailCommand() *cobra.Command {
	var (
		mode             string
		direction        string
		callerScope      string
		targetArg        string
		depth            int
		maxNodes         int
		showUtilityCalls bool
	)
	cmd := &cobra.Command{
		Use:   "trail <root-node-id>",
		Short: "Bounded, direction-aware traversal from a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootID, err := parseNodeID(args[0])
			if err != nil {
				return err
			}
			dto := controller.TrailConfigDto{
				RootID:           rootID,
				Mode:             mode,
				Depth:            depth,
				Direction:        direction,
				CallerScope:      callerScope,
				ShowUtilityCalls: showUtilityCalls,
				MaxNodes:         maxNodes,
			}
			if targetArg != "" {
				tgt, err := parseNodeID(targetArg)
				if err != nil {
					return err
				}
				dto.TargetID = &tgt
			}

			c := openController()
			defer c.Close()

			resp, cerr := c.GraphTrail(dto)
			if cerr != nil {
				return cerr
			}
			return printGraphResponse(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "AllReferenced", "Neighborhood|AllReferenced|AllReferencing|ToTargetSymbol")
	cmd.Flags().StringVar(&direction, "direction", "Outgoing", "Incoming|Outgoing|Both")
	cmd.Flags().StringVar(&callerScope, "caller-scope", "ProductionOnly", "ProductionOnly|IncludeTestsAndBenches")
	cmd.Flags().StringVar(&targetArg, "target", "", "target node id, required for mode=ToTargetSymbol")
	cmd.Flags().IntVar(&depth, "depth", 0, "max BFS depth, 0 means unbounded (still capped by --max-nodes)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "node cap, clamped to the engine's [min,max] bounds")
	cmd.Flags().BoolVar(&showUtilityCalls, "show-utility-calls", false, "include calls to common skip-listed utility methods")
	return cmd
}
