package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"markerstack/internal/layout"
)

// SVG draws the track and its markers. SVG has no z-index, so markers are
// emitted in ascending stacking order and later ones paint on top.
func SVG(result layout.Result, style Style) string {
	trackWidth := result.Width
	if !(trackWidth > 0) || math.IsInf(trackWidth, 0) {
		trackWidth = 0
	}
	width := trackWidth + float64(2*style.Margin)
	midY := style.Height / 2

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.marker-label { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, num(width), style.Height, style.Background, style.FontFamily, style.FontSize, style.LabelColor))

	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%s" y2="%d" stroke="%s" stroke-width="%d" stroke-linecap="round"/>`,
		style.Margin, midY, num(float64(style.Margin)+trackWidth), midY, style.TrackColor, style.LineWidth))
	svg.WriteString("\n")

	for _, i := range paintOrder(result) {
		p := result.Placements[i]
		x := float64(style.Margin) + p.X
		y := float64(midY) + p.Offset

		svg.WriteString(fmt.Sprintf(`<g class="marker" data-marker="%s" data-z="%d">`, escapeXML(p.Key()), result.StackingOrder(i)))
		if p.Label != "" {
			svg.WriteString(fmt.Sprintf(`<title>%s</title>`, escapeXML(p.Label)))
		}
		if p.Offset != 0 {
			svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%d" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`,
				num(x), midY, num(x), num(y), style.TrackColor))
		}
		drawMarker(&svg, x, y, style)
		if p.Label != "" {
			labelY := y + float64(style.Size+style.FontSize+2)
			svg.WriteString(fmt.Sprintf(`<text class="marker-label" x="%s" y="%s" text-anchor="middle">%s</text>`,
				num(x), num(labelY), escapeXML(p.Label)))
		}
		svg.WriteString("</g>\n")
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// paintOrder returns placement indices sorted by stacking order, input order
// on ties.
func paintOrder(result layout.Result) []int {
	order := make([]int, len(result.Placements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return result.StackingOrder(order[a]) < result.StackingOrder(order[b])
	})
	return order
}

// drawMarker draws the configured marker shape centred on (x, y).
// Unknown shapes fall back to a circle.
func drawMarker(svg *strings.Builder, x, y float64, style Style) {
	size := float64(style.Size)
	fill := style.FillColor
	stroke := style.StrokeColor
	strokeWidth := style.StrokeWidth

	switch strings.ToLower(style.Shape) {
	case "square":
		svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%d"/>`,
			num(x-size), num(y-size), num(size*2), num(size*2), fill, stroke, strokeWidth))

	case "diamond":
		svg.WriteString(fmt.Sprintf(`<polygon points="%s,%s %s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%d"/>`,
			num(x), num(y-size), // top
			num(x+size), num(y), // right
			num(x), num(y+size), // bottom
			num(x-size), num(y), // left
			fill, stroke, strokeWidth))

	case "triangle":
		height := size * 1.5
		svg.WriteString(fmt.Sprintf(`<polygon points="%s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%d"/>`,
			num(x), num(y-height),        // top point
			num(x-size), num(y+height/2), // bottom left
			num(x+size), num(y+height/2), // bottom right
			fill, stroke, strokeWidth))

	default:
		svg.WriteString(fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%d"/>`,
			num(x), num(y), num(size), fill, stroke, strokeWidth))
	}
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// escapeXML escapes the five XML special characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
