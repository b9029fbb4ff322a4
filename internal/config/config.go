// Package config loads markerstack settings from defaults, an optional
// config file and MARKERSTACK_* environment variables, in increasing order of
// precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"markerstack/internal/layout"
	"markerstack/internal/progress"
	"markerstack/internal/render"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// MARKERSTACK_TRACK_WIDTH or MARKERSTACK_LAYOUT_MINSPACING.
const EnvPrefix = "MARKERSTACK"

// Config is the typed view of all settings.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	Track    struct {
		Width float64 `mapstructure:"width"`
	} `mapstructure:"track"`
	Layout   layout.Options `mapstructure:"layout"`
	Render   RenderConfig   `mapstructure:"render"`
	Progress ProgressConfig `mapstructure:"progress"`
}

// RenderConfig selects the output format and drawing style.
type RenderConfig struct {
	Format       string `mapstructure:"format"`
	render.Style `mapstructure:",squash"`
}

// ProgressConfig describes the page range of the current read.
type ProgressConfig struct {
	StartPage int `mapstructure:"startPage"`
	EndPage   int `mapstructure:"endPage"`
	Limit     int `mapstructure:"limit"`
}

// Range returns the configured page range.
func (p ProgressConfig) Range() progress.Range {
	return progress.Range{Start: p.StartPage, End: p.EndPage}
}

// setDefaults registers a default for every key so environment overrides
// apply during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("track.width", 1000.0)

	opts := layout.DefaultOptions()
	v.SetDefault("layout.minSpacing", opts.MinSpacing)
	v.SetDefault("layout.verticalSpacing", opts.VerticalSpacing)
	v.SetDefault("layout.baseZ", opts.BaseZ)
	v.SetDefault("layout.hoverZ", opts.HoverZ)

	style := render.DefaultStyle()
	v.SetDefault("render.format", render.FormatCSS)
	v.SetDefault("render.height", style.Height)
	v.SetDefault("render.margin", style.Margin)
	v.SetDefault("render.shape", style.Shape)
	v.SetDefault("render.size", style.Size)
	v.SetDefault("render.fillColor", style.FillColor)
	v.SetDefault("render.strokeColor", style.StrokeColor)
	v.SetDefault("render.strokeWidth", style.StrokeWidth)
	v.SetDefault("render.trackColor", style.TrackColor)
	v.SetDefault("render.lineWidth", style.LineWidth)
	v.SetDefault("render.background", style.Background)
	v.SetDefault("render.fontFamily", style.FontFamily)
	v.SetDefault("render.fontSize", style.FontSize)
	v.SetDefault("render.labelColor", style.LabelColor)
	v.SetDefault("render.columns", style.Columns)

	v.SetDefault("progress.startPage", 0)
	v.SetDefault("progress.endPage", 719)
	v.SetDefault("progress.limit", progress.DefaultLimit)
}

// New returns a viper instance with defaults and environment overrides
// registered. Callers may bind command-line flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path (any format viper understands, chosen
// by extension) into v and decodes the result. An empty path uses defaults
// and environment only.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Layout.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
