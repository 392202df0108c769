package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/codestory/codestory/internal/controller"
)

func newIndexCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the project, full or incremental",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openController()
			defer c.Close()

			ch, cancel := c.Subscribe()
			defer cancel()

			mode := controller.ModeIncremental
			if full {
				mode = controller.ModeFull
			}
			if cerr := c.StartIndexing(mode); cerr != nil {
				return cerr
			}
			return watchIndexing(ch)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "force a full rebuild instead of an incremental refresh")
	return cmd
}

// watchIndexing renders a progress bar from the controller's event
// stream until IndexingComplete or IndexingFailed arrives.
func watchIndexing(ch <-chan controller.Envelope) error {
	var bar *progressbar.ProgressBar
	for env := range ch {
		switch ev := env.Event.(type) {
		case controller.StatusUpdate:
			fmt.Fprintln(os.Stderr, ev.Message)
		case controller.IndexingStarted:
			bar = progressbar.Default(int64(ev.FileCount), "indexing")
		case controller.IndexingProgress:
			if bar != nil {
				bar.Set64(int64(ev.Current))
			}
		case controller.IndexingComplete:
			if bar != nil {
				bar.Finish()
			}
			fmt.Fprintf(os.Stderr, "done in %dms\n", ev.DurationMS)
			return nil
		case controller.IndexingFailed:
			if bar != nil {
				bar.Close()
			}
			return fmt.Errorf("indexing failed: %s", ev.Error)
		}
	}
	return nil
}
