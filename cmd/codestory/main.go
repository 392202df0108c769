// Command codestory is the CLI front end over internal/controller: open a
// project, index it, and run graph/search queries against the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codestory/codestory/internal/controller"
)

var version = "dev"

// globalFlags holds flags shared across every subcommand.
type globalFlags struct {
	projectPath string
	noColor     bool
	jsonOutput  bool
}

var globals globalFlags

func main() {
	root := &cobra.Command{
		Use:     "codestory",
		Short:   "Symbol graph and code intelligence engine",
		Version: version,
	}
	root.PersistentFlags().StringVar(&globals.projectPath, "project", ".", "project root directory")
	root.PersistentFlags().BoolVar(&globals.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVar(&globals.jsonOutput, "json", false, "emit machine-readable JSON output")

	root.AddCommand(
		newIndexCommand(),
		newSearchCommand(),
		newNeighborhoodCommand(),
		newTrailCommand(),
		newServeCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openController opens the project at globals.projectPath and returns a
// ready Controller, or exits the process on failure.
func openController() *controller.Controller {
	c := controller.New()
	if _, cerr := c.OpenProject(globals.projectPath); cerr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", cerr)
		os.Exit(1)
	}
	return c
}
