package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"markerstack/internal/layout"
	"markerstack/internal/source"
)

func newLayoutCmd(a *app) *cobra.Command {
	var (
		widths []float64
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Lay out markers from a CSV or YAML file",
		Long: `Reads markers (id, label, position) from a CSV or YAML file and writes the
computed layout. Each --width is a full recompute, so passing several widths
shows how clusters form and split as the track is resized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			doc, err := source.Load(input)
			if err != nil {
				return err
			}
			a.log.Debug().Str("file", input).Int("markers", len(doc.Markers)).Msg("markers loaded")
			if len(doc.Markers) == 0 {
				a.log.Warn().Str("file", input).Msg("no markers found")
			}

			trackWidths := a.trackWidths(widths, doc.Track.Width)
			board, err := layout.NewBoard(a.cfg.Layout, trackWidths[0], a.log)
			if err != nil {
				return err
			}
			if err := board.Replace(doc.Markers); err != nil {
				return fmt.Errorf("error laying out %s: %w", input, err)
			}

			for i, w := range trackWidths {
				if i > 0 {
					if err := board.Resize(w); err != nil {
						return err
					}
				}
				if err := a.writeResult(cmd.OutOrStdout(), input, output, widthSuffix(trackWidths, w), board.Snapshot()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&widths, "width", nil, "track width in pixels (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: input name with format extension)`)
	return cmd
}
