package render

// Style controls how markers and the track are drawn.
type Style struct {
	Height      int    `mapstructure:"height"`      // Total SVG height in pixels; the track sits at half height
	Margin      int    `mapstructure:"margin"`      // Horizontal margin on each side of the track in pixels
	Shape       string `mapstructure:"shape"`       // Marker shape: "circle", "triangle", "square", or "diamond"
	Size        int    `mapstructure:"size"`        // Size of the marker in pixels (radius for circle, half side for others)
	FillColor   string `mapstructure:"fillColor"`   // Fill color of the marker (hex color code)
	StrokeColor string `mapstructure:"strokeColor"` // Border color of the marker (hex color code)
	StrokeWidth int    `mapstructure:"strokeWidth"` // Width of the marker border in pixels
	TrackColor  string `mapstructure:"trackColor"`  // Color of the track line and marker stems
	LineWidth   int    `mapstructure:"lineWidth"`   // Width of the track line in pixels
	Background  string `mapstructure:"background"`  // Background color
	FontFamily  string `mapstructure:"fontFamily"`  // Label font family
	FontSize    int    `mapstructure:"fontSize"`    // Label font size in pixels
	LabelColor  string `mapstructure:"labelColor"`  // Label text color
	Columns     int    `mapstructure:"columns"`     // Character columns used by the terminal preview
}

// DefaultStyle returns the style used when no configuration is given.
func DefaultStyle() Style {
	return Style{
		Height:      400,
		Margin:      40,
		Shape:       "circle",
		Size:        8,
		FillColor:   "#4285f4",
		StrokeColor: "#333333",
		StrokeWidth: 2,
		TrackColor:  "#333333",
		LineWidth:   4,
		Background:  "#ffffff",
		FontFamily:  "Arial, sans-serif",
		FontSize:    12,
		LabelColor:  "#333333",
		Columns:     80,
	}
}
