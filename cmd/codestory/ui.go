package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/codestory/codestory/internal/graph"
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

var (
	colorCertain   = color.New(color.FgGreen)
	colorProbable  = color.New(color.FgYellow)
	colorUncertain = color.New(color.FgRed)
)

// certaintyLabel bands a 0..1 score using the same thresholds the
// resolver uses for edge confidence, for colored CLI output that
// degrades to plain text on a non-TTY or --no-color.
func certaintyLabel(score float64) string {
	if globals.noColor {
		color.NoColor = true
	}
	switch graph.CertaintyForConfidence(score) {
	case graph.Certain:
		return colorCertain.Sprint("certain")
	case graph.Probable:
		return colorProbable.Sprint("probable")
	default:
		return colorUncertain.Sprint("uncertain")
	}
}

// cmdOut returns the writer a subcommand should print its result to,
// honoring cobra's configured output stream.
func cmdOut(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
