/*
Package layout positions markers along a horizontal track and fans out the
ones that would overlap.

Markers are placed by percentage of the track width. Any marker closer than
Options.MinSpacing pixels to a member of an existing cluster joins that
cluster, so clusters grow transitively along chains of near neighbours. Each
cluster with more than one member is spread symmetrically around the track
midline, Options.VerticalSpacing pixels apart, with ascending stacking order.

Compute is a pure function of its inputs. Board wraps it for callers that need
to recompute on resize or when markers come and go.
*/
package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Default layout constants.
const (
	// DefaultMinSpacing is the pixel distance under which two markers overlap.
	DefaultMinSpacing = 45.0

	// DefaultVerticalSpacing is the pixel distance between stacked markers.
	DefaultVerticalSpacing = 80.0

	// DefaultBaseZ is the stacking order of an unstacked, unhovered marker.
	DefaultBaseZ = 10

	// DefaultHoverZ is the stacking order of a hovered marker.
	DefaultHoverZ = 100
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid layout options")

// Marker is one input item on the track. Position is kept in its raw form and
// validated by Compute.
type Marker struct {
	ID       string `json:"id,omitempty" yaml:"id"`
	Label    string `json:"label,omitempty" yaml:"label"`
	Position any    `json:"position" yaml:"position"`
}

// Key returns the identifier used for the marker at index i: its ID when set,
// otherwise the index.
func Key(id string, i int) string {
	if id != "" {
		return id
	}
	return strconv.Itoa(i)
}

// Options controls clustering and stacking.
type Options struct {
	MinSpacing      float64 `json:"minSpacing" mapstructure:"minSpacing"`
	VerticalSpacing float64 `json:"verticalSpacing" mapstructure:"verticalSpacing"`
	BaseZ           int     `json:"baseZ" mapstructure:"baseZ"`
	HoverZ          int     `json:"hoverZ" mapstructure:"hoverZ"`
}

// DefaultOptions returns the options used by the book club progress track.
func DefaultOptions() Options {
	return Options{
		MinSpacing:      DefaultMinSpacing,
		VerticalSpacing: DefaultVerticalSpacing,
		BaseZ:           DefaultBaseZ,
		HoverZ:          DefaultHoverZ,
	}
}

// Validate reports whether the options can produce a usable layout.
func (o Options) Validate() error {
	if !(o.MinSpacing > 0) || math.IsInf(o.MinSpacing, 0) {
		return fmt.Errorf("%w: minSpacing must be positive, got %g", ErrInvalidOptions, o.MinSpacing)
	}
	if !(o.VerticalSpacing > 0) || math.IsInf(o.VerticalSpacing, 0) {
		return fmt.Errorf("%w: verticalSpacing must be positive, got %g", ErrInvalidOptions, o.VerticalSpacing)
	}
	if o.HoverZ <= o.BaseZ {
		return fmt.Errorf("%w: hoverZ (%d) must exceed baseZ (%d)", ErrInvalidOptions, o.HoverZ, o.BaseZ)
	}
	return nil
}

// Placement is the computed presentation of one marker.
type Placement struct {
	Index   int     `json:"index"`
	ID      string  `json:"id,omitempty"`
	Label   string  `json:"label,omitempty"`
	Percent float64 `json:"percent"`
	X       float64 `json:"x"`
	Offset  float64 `json:"offset"`
	Z       int     `json:"z"`
	Cluster int     `json:"cluster"`
	Stacked bool    `json:"stacked"`
	Hovered bool    `json:"hovered,omitempty"`
}

// Key returns the marker's identifier, see Key.
func (p Placement) Key() string {
	return Key(p.ID, p.Index)
}

// TopCSS returns the vertical position relative to the track midline as a CSS
// length.
func (p Placement) TopCSS() string {
	if p.Offset == 0 {
		return "50%"
	}
	sign := "+"
	if p.Offset < 0 {
		sign = "-"
	}
	return fmt.Sprintf("calc(50%% %s %spx)", sign, strconv.FormatFloat(math.Abs(p.Offset), 'f', -1, 64))
}

// Result is a computed layout. Placements are in input order, Clusters hold
// input indices in the order the clusters were created.
type Result struct {
	Width      float64     `json:"width"`
	BaseZ      int         `json:"baseZ"`
	HoverZ     int         `json:"hoverZ"`
	Placements []Placement `json:"placements"`
	Clusters   [][]int     `json:"clusters"`
}

// Empty reports whether the layout has no markers.
func (r Result) Empty() bool {
	return len(r.Placements) == 0
}

// StackingOrder returns the z value the presentation layer should use for the
// placement, accounting for hover.
func (r Result) StackingOrder(i int) int {
	p := r.Placements[i]
	state := Baseline
	if p.Hovered {
		state = Hovered
	}
	return StackingOrder(state, p.Z, r.HoverZ)
}

// Compute lays out markers on a track trackWidth pixels wide.
//
// An empty marker set or a missing track (width <= 0) yields an empty result
// and no error. Any marker with an invalid position fails the whole
// computation with a *PositionError.
func Compute(markers []Marker, trackWidth float64, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{
		Width:      trackWidth,
		BaseZ:      opts.BaseZ,
		HoverZ:     opts.HoverZ,
		Placements: []Placement{},
		Clusters:   [][]int{},
	}
	if len(markers) == 0 || !(trackWidth > 0) || math.IsInf(trackWidth, 0) {
		return result, nil
	}

	// Resolve positions.
	placements := make([]Placement, len(markers))
	for i, m := range markers {
		pct, err := ParsePercent(m.Position)
		if err != nil {
			return Result{}, &PositionError{Index: i, ID: m.ID, Raw: m.Position, Err: err}
		}
		placements[i] = Placement{
			Index:   i,
			ID:      m.ID,
			Label:   m.Label,
			Percent: pct,
			X:       pct / 100 * trackWidth,
			Z:       opts.BaseZ,
		}
	}

	// Sort left to right, ties in input order.
	order := make([]int, len(placements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return placements[order[a]].X < placements[order[b]].X
	})

	clusters := groupOverlapping(order, placements, opts.MinSpacing)

	// Fan out stacked clusters around the midline.
	for c, members := range clusters {
		n := len(members)
		for i, idx := range members {
			p := &placements[idx]
			p.Cluster = c
			if n == 1 {
				p.Offset = 0
				p.Z = opts.BaseZ
				continue
			}
			p.Stacked = true
			p.Offset = (float64(i) - float64(n-1)/2) * opts.VerticalSpacing
			p.Z = opts.BaseZ + i
		}
	}

	result.Placements = placements
	result.Clusters = clusters
	return result, nil
}

// groupOverlapping walks markers in sorted order and adds each to the first
// cluster holding any member closer than minSpacing, or starts a new one.
func groupOverlapping(order []int, placements []Placement, minSpacing float64) [][]int {
	var clusters [][]int

	for _, idx := range order {
		x := placements[idx].X
		joined := false
		for c := range clusters {
			for _, member := range clusters[c] {
				if math.Abs(placements[member].X-x) < minSpacing {
					clusters[c] = append(clusters[c], idx)
					joined = true
					break
				}
			}
			if joined {
				break
			}
		}
		if !joined {
			clusters = append(clusters, []int{idx})
		}
	}

	return clusters
}
