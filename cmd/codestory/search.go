package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy and full-text symbol search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openController()
			defer c.Close()

			hits, cerr := c.Search(args[0])
			if cerr != nil {
				return cerr
			}
			if globals.jsonOutput {
				enc := json.NewEncoder(cmdOut(cmd))
				enc.SetIndent("", "  ")
				return enc.Encode(hits)
			}
			for _, h := range hits {
				fmt.Fprintf(cmdOut(cmd), "%-40s  %-10s  %s:%d  %.1f\n", h.Name, h.Kind, h.FilePath, h.Line, h.Score)
			}
			return nil
		},
	}
	return cmd
}
