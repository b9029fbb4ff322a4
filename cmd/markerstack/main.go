/*
Command markerstack lays out markers on a horizontal track and writes the
result as CSS, JSON, SVG or a terminal preview.

Markers closer than the configured minimum spacing are grouped into clusters
and fanned out vertically around the track midline, with ascending stacking
order inside each cluster.

Usage:

	markerstack layout markers.csv --width 1000 --width 1440 --format css
	markerstack progress readers.csv --start 0 --end 719 --format svg
	markerstack watch markers.yaml --output -
*/
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"markerstack/internal/config"
	"markerstack/internal/layout"
	"markerstack/internal/logging"
	"markerstack/internal/render"
)

// app carries the state shared by all commands.
type app struct {
	v          *viper.Viper
	cfg        config.Config
	log        zerolog.Logger
	configFile string
	debug      bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "markerstack",
		Short:         "Lay out overlapping markers on a timeline track",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			if !slices.Contains(render.Formats(), strings.ToLower(cfg.Render.Format)) {
				return fmt.Errorf("%w: %q (want one of %s)", render.ErrUnknownFormat, cfg.Render.Format, strings.Join(render.Formats(), ", "))
			}
			a.cfg = cfg
			a.log = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, a.debug)
			a.log.Debug().
				Float64("minSpacing", cfg.Layout.MinSpacing).
				Float64("verticalSpacing", cfg.Layout.VerticalSpacing).
				Str("format", cfg.Render.Format).
				Msg("configuration loaded")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (YAML, JSON or TOML)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.String("format", render.FormatCSS, "output format: "+strings.Join(render.Formats(), ", "))
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("render.format", flags.Lookup("format"))
	_ = a.v.BindPFlag("logLevel", flags.Lookup("log-level"))

	root.AddCommand(newLayoutCmd(a), newProgressCmd(a), newWatchCmd(a))
	return root
}

// trackWidths picks the widths to lay out for: explicit flags first, then
// the input file's own track width, then the configured default.
func (a *app) trackWidths(flagWidths []float64, fileWidth float64) []float64 {
	switch {
	case len(flagWidths) > 0:
		return flagWidths
	case fileWidth > 0:
		return []float64{fileWidth}
	default:
		return []float64{a.cfg.Track.Width}
	}
}

// writeResult renders result and writes it to stdout when output is "-",
// otherwise to a file named after output or input. suffix, when set, is
// appended to the file's base name so several widths do not overwrite each
// other.
func (a *app) writeResult(out io.Writer, input, output, suffix string, result layout.Result) error {
	format := strings.ToLower(a.cfg.Render.Format)
	style := a.cfg.Render.Style

	if output == "-" {
		return render.Write(format, out, result, style)
	}

	path := render.OutputFilename(input, output, format)
	if suffix != "" {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + "-" + suffix + ext
	}

	var buf bytes.Buffer
	if err := render.Write(format, &buf, result, style); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	a.log.Info().Str("file", path).Int("markers", len(result.Placements)).Int("clusters", len(result.Clusters)).Msg("layout written")
	fmt.Fprintf(out, "Marker layout written: %s\n", path)
	return nil
}

func widthSuffix(widths []float64, w float64) string {
	if len(widths) < 2 {
		return ""
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
