package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"markerstack/internal/layout"
	"markerstack/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		width  float64
		output string
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-lay out markers every time the input file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			trackWidth := a.cfg.Track.Width
			if width > 0 {
				trackWidth = width
			}
			board, err := layout.NewBoard(a.cfg.Layout, trackWidth, a.log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			emit := func() {
				if err := a.writeResult(out, input, output, "", board.Snapshot()); err != nil {
					a.log.Error().Err(err).Msg("error writing layout")
				}
			}

			w, err := watch.New(input, board, a.log, watch.WithOnReload(emit))
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Reload(); err != nil {
				return fmt.Errorf("error laying out %s: %w", input, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatcher(ctx, w)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "track width in pixels")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: input name with format extension)`)
	return cmd
}

// runWatcher blocks until ctx is cancelled.
func runWatcher(ctx context.Context, w *watch.Watcher) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}
