package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"markerstack/internal/layout"
	"markerstack/internal/progress"
	"markerstack/internal/source"
)

var errNoReaders = errors.New("no reader progress found")

func newProgressCmd(a *app) *cobra.Command {
	var (
		width  float64
		output string
	)

	cmd := &cobra.Command{
		Use:   "progress <file>",
		Short: "Place the top readers on the book club progress track",
		Long: `Reads reader progress (reader, page, optional updated_at) from a CSV or YAML
file, keeps the furthest-along readers, converts their pages to a percentage
of the configured page range and lays them out on the track.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			doc, err := source.Load(input)
			if err != nil {
				return err
			}
			if len(doc.Readers) == 0 {
				return fmt.Errorf("%w in %s", errNoReaders, input)
			}

			pages := a.cfg.Progress.Range()
			top := progress.Leaderboard(doc.Readers, a.cfg.Progress.Limit)
			printLeaderboard(cmd.ErrOrStderr(), pages, top)

			var flagWidths []float64
			if width > 0 {
				flagWidths = []float64{width}
			}
			trackWidth := a.trackWidths(flagWidths, doc.Track.Width)[0]

			result, err := layout.Compute(progress.Markers(pages, top), trackWidth, a.cfg.Layout)
			if err != nil {
				return fmt.Errorf("error laying out %s: %w", input, err)
			}
			return a.writeResult(cmd.OutOrStdout(), input, output, "", result)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&width, "width", 0, "track width in pixels")
	flags.StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: input name with format extension)`)
	flags.Int("start", 0, "first page of the current read")
	flags.Int("end", 719, "last page of the current read")
	flags.Int("limit", progress.DefaultLimit, "number of readers to show")
	_ = a.v.BindPFlag("progress.startPage", flags.Lookup("start"))
	_ = a.v.BindPFlag("progress.endPage", flags.Lookup("end"))
	_ = a.v.BindPFlag("progress.limit", flags.Lookup("limit"))
	return cmd
}

func printLeaderboard(w io.Writer, pages progress.Range, entries []progress.Entry) {
	fmt.Fprintf(w, "Top %d readers (pages %d-%d):\n", len(entries), pages.Start, pages.End)
	for i, e := range entries {
		fmt.Fprintf(w, "%3d. %-20s page %-5d %3d%%\n", i+1, e.Reader, e.Page, pages.Percent(e.Page))
	}
}
