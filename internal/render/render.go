// Package render writes a computed layout out for a presentation layer: CSS
// rules, JSON, SVG, or a terminal preview.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"markerstack/internal/layout"
)

// Output formats.
const (
	FormatCSS  = "css"
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatText = "text"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatCSS, FormatJSON, FormatSVG, FormatText}
}

// Write renders result to w in the given format.
func Write(format string, w io.Writer, result layout.Result, style Style) error {
	var out string
	switch strings.ToLower(format) {
	case FormatCSS:
		out = CSS(result)
	case FormatJSON:
		return JSON(w, result)
	case FormatSVG:
		out = SVG(result, style)
	case FormatText:
		out = Terminal(result, style)
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
	_, err := io.WriteString(w, out)
	return err
}

// JSON writes the layout as an indented JSON document.
func JSON(w io.Writer, result layout.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// CSS writes one rule per marker setting its horizontal position, vertical
// offset and stacking order, plus a hover rule that raises it above its
// neighbours. Markers are matched by their data-marker attribute.
func CSS(result layout.Result) string {
	var css strings.Builder
	css.WriteString(fmt.Sprintf("/* %d markers, %d clusters, track %spx */\n",
		len(result.Placements), len(result.Clusters), strconv.FormatFloat(result.Width, 'f', -1, 64)))

	for i, p := range result.Placements {
		sel := fmt.Sprintf(`[data-marker="%s"]`, cssString(p.Key()))
		css.WriteString(fmt.Sprintf("%s { left: %s%%; top: %s; z-index: %d; }\n",
			sel, strconv.FormatFloat(p.Percent, 'f', -1, 64), p.TopCSS(), result.StackingOrder(i)))
		css.WriteString(fmt.Sprintf("%s:hover { z-index: %d; }\n", sel, result.HoverZ))
	}
	return css.String()
}

// cssString escapes a value for use inside a double-quoted CSS string.
func cssString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\a `)
	return s
}

// OutputFilename picks the output path: output when set, otherwise the input
// file's base name with the extension for format (e.g. "readers.csv" becomes
// "readers.svg").
func OutputFilename(input, output, format string) string {
	if output != "" {
		return output
	}

	ext := "." + strings.ToLower(format)
	if ext == "."+FormatText {
		ext = ".txt"
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
