package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"markerstack/internal/layout"
)

// Terminal renders a character-grid preview of the layout: one row per
// distinct vertical offset, the track on the middle row, and a legend.
func Terminal(result layout.Result, style Style) string {
	cols := max(style.Columns, 10)

	trackStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(style.TrackColor))
	markerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(style.FillColor)).Bold(true)
	headerStyle := lipgloss.NewStyle().Bold(true)

	header := headerStyle.Render(fmt.Sprintf("track %gpx, %d markers, %d clusters",
		result.Width, len(result.Placements), len(result.Clusters)))

	offsets := []float64{0}
	for _, p := range result.Placements {
		if !containsFloat(offsets, p.Offset) {
			offsets = append(offsets, p.Offset)
		}
	}
	sort.Float64s(offsets)

	type cell struct {
		glyph  rune
		marker bool
	}
	grid := make(map[float64][]cell, len(offsets))
	for _, off := range offsets {
		grid[off] = make([]cell, cols)
	}

	// Paint in stacking order so the top-most marker owns a shared cell.
	for _, i := range paintOrder(result) {
		p := result.Placements[i]
		col := int(math.Round(p.Percent / 100 * float64(cols-1)))
		grid[p.Offset][col] = cell{glyph: glyphFor(p), marker: true}
	}

	lines := []string{header}
	for _, off := range offsets {
		var row strings.Builder
		for _, c := range grid[off] {
			switch {
			case c.marker:
				row.WriteString(markerStyle.Render(string(c.glyph)))
			case off == 0:
				row.WriteString(trackStyle.Render("─"))
			default:
				row.WriteString(" ")
			}
		}
		lines = append(lines, row.String())
	}

	for i, p := range result.Placements {
		lines = append(lines, fmt.Sprintf("%c %-12s %6.2f%%  x=%-8.1f cluster %-3d offset %-7g z %d",
			glyphFor(p), p.Key(), p.Percent, p.X, p.Cluster, p.Offset, result.StackingOrder(i)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// glyphFor picks the preview character for a marker: the first letter of its
// label or ID, or a dot.
func glyphFor(p layout.Placement) rune {
	for _, s := range []string{p.Label, p.ID} {
		if r, _ := utf8.DecodeRuneInString(s); r != utf8.RuneError && unicode.IsLetter(r) {
			return unicode.ToUpper(r)
		}
	}
	return '●'
}

func containsFloat(xs []float64, x float64) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
