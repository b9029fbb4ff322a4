package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownMarker is returned when a marker key is not on the board.
	ErrUnknownMarker = errors.New("unknown marker")

	// ErrDuplicateMarker is returned when adding a marker whose ID is taken.
	ErrDuplicateMarker = errors.New("duplicate marker id")

	// ErrReservedID is returned for marker IDs starting with UnnamedPrefix.
	ErrReservedID = errors.New("reserved marker id")
)

// UnnamedPrefix starts the board keys assigned to markers without an ID.
const UnnamedPrefix = "#"

// Board holds the live marker set and track width and keeps a computed
// layout in sync with them. Every change triggers a full recompute; if the
// recompute fails the board keeps its previous state.
//
// Each marker is addressed by a key fixed when it joins the board: its ID, or
// UnnamedPrefix followed by a sequence number when it has none. Keys do not
// move when other markers are removed.
type Board struct {
	mu      sync.Mutex
	opts    Options
	width   float64
	markers []Marker
	keys    []string
	seq     int
	hover   map[string]HoverState
	result  Result
	log     zerolog.Logger
}

// NewBoard creates an empty board. Options are validated here so later
// recomputes can only fail on marker data.
func NewBoard(opts Options, width float64, log zerolog.Logger) (*Board, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		opts:  opts,
		width: width,
		hover: make(map[string]HoverState),
		log:   log.With().Str("component", "board").Logger(),
	}
	b.result, _ = Compute(nil, width, opts)
	return b, nil
}

// Resize changes the track width and recomputes.
func (b *Board) Resize(width float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apply(b.markers, b.keys, width)
}

// Add appends a marker and recomputes.
func (b *Board) Add(m Marker) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkID(m.ID); err != nil {
		return err
	}
	if m.ID != "" && b.indexOf(m.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateMarker, m.ID)
	}
	next := make([]Marker, len(b.markers), len(b.markers)+1)
	copy(next, b.markers)
	next = append(next, m)
	keys := make([]string, len(b.keys), len(b.keys)+1)
	copy(keys, b.keys)
	keys = append(keys, b.nextKey(m))
	return b.apply(next, keys, b.width)
}

// Remove drops the marker with the given key and recomputes.
func (b *Board) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMarker, key)
	}
	next := make([]Marker, 0, len(b.markers)-1)
	next = append(next, b.markers[:i]...)
	next = append(next, b.markers[i+1:]...)
	keys := make([]string, 0, len(b.keys)-1)
	keys = append(keys, b.keys[:i]...)
	keys = append(keys, b.keys[i+1:]...)
	return b.apply(next, keys, b.width)
}

// Replace swaps the whole marker set and recomputes. Markers with an ID keep
// their hover state; markers without one join as new entries.
func (b *Board) Replace(markers []Marker) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make([]Marker, len(markers))
	copy(next, markers)
	keys := make([]string, len(markers))
	for i, m := range next {
		if err := checkID(m.ID); err != nil {
			return err
		}
		keys[i] = b.nextKey(m)
	}
	return b.apply(next, keys, b.width)
}

// Hover feeds a pointer event to the marker with the given key and returns
// its resulting stacking order.
func (b *Board) Hover(key string, ev PointerEvent) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(key)
	if i < 0 || i >= len(b.result.Placements) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMarker, key)
	}
	state := b.hover[key].Next(ev)
	if state == Baseline {
		delete(b.hover, key)
	} else {
		b.hover[key] = state
	}
	b.result.Placements[i].Hovered = state == Hovered
	return b.result.StackingOrder(i), nil
}

// Snapshot returns a copy of the current layout.
func (b *Board) Snapshot() Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.result
	out.Placements = append([]Placement(nil), b.result.Placements...)
	out.Clusters = make([][]int, len(b.result.Clusters))
	for i, c := range b.result.Clusters {
		out.Clusters[i] = append([]int(nil), c...)
	}
	return out
}

// Keys returns the board key of every marker, in marker order.
func (b *Board) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

// Width returns the current track width.
func (b *Board) Width() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

// Len returns the number of markers on the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.markers)
}

// apply recomputes for the given state and commits it on success.
// Callers hold b.mu.
func (b *Board) apply(markers []Marker, keys []string, width float64) error {
	result, err := Compute(markers, width, b.opts)
	if err != nil {
		b.log.Warn().Err(err).Msg("layout recompute failed, keeping previous layout")
		return err
	}

	live := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		live[key] = struct{}{}
	}
	for key := range b.hover {
		if _, ok := live[key]; !ok {
			delete(b.hover, key)
		}
	}
	for i := range result.Placements {
		if b.hover[keys[i]] == Hovered {
			result.Placements[i].Hovered = true
		}
	}

	b.markers = markers
	b.keys = keys
	b.width = width
	b.result = result

	b.log.Debug().
		Float64("width", width).
		Int("markers", len(markers)).
		Int("clusters", len(result.Clusters)).
		Msg("layout recomputed")
	return nil
}

// indexOf finds a marker by key. Callers hold b.mu.
func (b *Board) indexOf(key string) int {
	for i, k := range b.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// nextKey returns the key for a marker joining the board. Callers hold b.mu.
func (b *Board) nextKey(m Marker) string {
	if m.ID != "" {
		return m.ID
	}
	key := UnnamedPrefix + strconv.Itoa(b.seq)
	b.seq++
	return key
}

func checkID(id string) error {
	if strings.HasPrefix(id, UnnamedPrefix) {
		return fmt.Errorf("%w: %s", ErrReservedID, id)
	}
	return nil
}
