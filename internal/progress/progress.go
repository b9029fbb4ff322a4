// Package progress turns reading progress (a page number per reader) into
// markers on the book club track.
package progress

import (
	"fmt"
	"sort"
	"time"

	"markerstack/internal/layout"
)

// DefaultLimit is the number of readers shown on the track.
const DefaultLimit = 10

// Range is the page span of the current read, inclusive.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Percent returns how far through the range page is, as a whole percentage
// between 0 and 100.
func (r Range) Percent(page int) int {
	if r.End == r.Start {
		if page >= r.Start {
			return 100
		}
		return 0
	}

	size := r.End - r.Start
	pos := page - r.Start
	if pos < 0 {
		return 0
	}
	if pos > size {
		return 100
	}

	pct := int(float64(pos) / float64(size) * 100)
	return min(100, max(0, pct))
}

// Entry is one reader's saved progress.
type Entry struct {
	Reader    string    `json:"reader" yaml:"reader"`
	Page      int       `json:"page" yaml:"page"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Leaderboard returns the furthest-along readers first, most recently
// updated first on equal pages, cut to limit. A limit <= 0 uses DefaultLimit.
func Leaderboard(entries []Entry, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page > sorted[j].Page
		}
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Markers converts entries to track markers positioned by r.
func Markers(r Range, entries []Entry) []layout.Marker {
	markers := make([]layout.Marker, len(entries))
	for i, e := range entries {
		markers[i] = layout.Marker{
			ID:       e.Reader,
			Label:    fmt.Sprintf("%s (p. %d)", e.Reader, e.Page),
			Position: r.Percent(e.Page),
		}
	}
	return markers
}
