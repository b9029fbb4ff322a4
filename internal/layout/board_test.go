package layout

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T, width float64, ms ...Marker) *Board {
	t.Helper()
	b, err := NewBoard(DefaultOptions(), width, zerolog.Nop())
	require.NoError(t, err)
	if len(ms) > 0 {
		require.NoError(t, b.Replace(ms))
	}
	return b
}

func TestHoverState_Transitions(t *testing.T) {
	s := Baseline
	s = s.Next(PointerEnter)
	assert.Equal(t, Hovered, s)
	s = s.Next(PointerEnter)
	assert.Equal(t, Hovered, s)
	s = s.Next(PointerLeave)
	assert.Equal(t, Baseline, s)
	s = s.Next(PointerLeave)
	assert.Equal(t, Baseline, s)
	assert.Equal(t, "baseline", s.String())
	assert.Equal(t, "hovered", Hovered.String())
}

func TestStackingOrder(t *testing.T) {
	assert.Equal(t, 12, StackingOrder(Baseline, 12, 100))
	assert.Equal(t, 100, StackingOrder(Hovered, 12, 100))
}

func TestNewBoard_RejectsInvalidOptions(t *testing.T) {
	_, err := NewBoard(Options{}, 100, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestBoard_HoverRestoresClusterOrder(t *testing.T) {
	b := newTestBoard(t, 1000,
		Marker{ID: "a", Position: 0},
		Marker{ID: "b", Position: 3},
		Marker{ID: "c", Position: 3.2},
	)

	z, err := b.Hover("a", PointerEnter)
	require.NoError(t, err)
	assert.Equal(t, 100, z)
	assert.True(t, b.Snapshot().Placements[0].Hovered)

	z, err = b.Hover("c", PointerLeave)
	require.NoError(t, err)
	assert.Equal(t, 12, z)

	z, err = b.Hover("a", PointerLeave)
	require.NoError(t, err)
	assert.Equal(t, 10, z)
	assert.False(t, b.Snapshot().Placements[0].Hovered)

	_, err = b.Hover("zed", PointerEnter)
	assert.ErrorIs(t, err, ErrUnknownMarker)
}

func TestBoard_ResizeRecomputes(t *testing.T) {
	b := newTestBoard(t, 500,
		Marker{ID: "a", Position: 10},
		Marker{ID: "b", Position: 15},
	)
	assert.Len(t, b.Snapshot().Clusters, 1)

	require.NoError(t, b.Resize(1200))
	snap := b.Snapshot()
	assert.Len(t, snap.Clusters, 2)
	assert.Equal(t, 1200.0, snap.Width)
	assert.Equal(t, 1200.0, b.Width())
}

func TestBoard_AddAndRemove(t *testing.T) {
	b := newTestBoard(t, 1000, Marker{ID: "a", Position: 0})
	assert.Len(t, b.Snapshot().Clusters, 1)

	require.NoError(t, b.Add(Marker{ID: "b", Position: 2}))
	snap := b.Snapshot()
	require.Len(t, snap.Clusters, 1)
	assert.Equal(t, -40.0, snap.Placements[0].Offset)
	assert.Equal(t, 2, b.Len())

	err := b.Add(Marker{ID: "b", Position: 50})
	assert.ErrorIs(t, err, ErrDuplicateMarker)

	require.NoError(t, b.Remove("a"))
	snap = b.Snapshot()
	require.Len(t, snap.Placements, 1)
	assert.Equal(t, "b", snap.Placements[0].ID)
	assert.Zero(t, snap.Placements[0].Offset)

	assert.ErrorIs(t, b.Remove("a"), ErrUnknownMarker)
}

func TestBoard_FailedRecomputeKeepsLayout(t *testing.T) {
	b := newTestBoard(t, 1000, Marker{ID: "a", Position: 10})
	before := b.Snapshot()

	err := b.Add(Marker{ID: "bad", Position: "ten"})
	require.ErrorIs(t, err, ErrInvalidPosition)

	assert.Equal(t, before, b.Snapshot())
	assert.Equal(t, 1, b.Len())
}

func TestBoard_HoverSurvivesRecompute(t *testing.T) {
	b := newTestBoard(t, 1000,
		Marker{ID: "a", Position: 0},
		Marker{ID: "b", Position: 60},
	)
	_, err := b.Hover("b", PointerEnter)
	require.NoError(t, err)

	require.NoError(t, b.Add(Marker{ID: "c", Position: 61}))
	snap := b.Snapshot()
	assert.True(t, snap.Placements[1].Hovered)
	assert.Equal(t, 100, snap.StackingOrder(1))
	assert.Equal(t, 11, snap.StackingOrder(2))

	require.NoError(t, b.Remove("b"))
	require.NoError(t, b.Add(Marker{ID: "b", Position: 60}))
	assert.False(t, b.Snapshot().Placements[2].Hovered)
}

func TestBoard_SnapshotIsACopy(t *testing.T) {
	b := newTestBoard(t, 1000, Marker{ID: "a", Position: 0}, Marker{ID: "b", Position: 1})
	snap := b.Snapshot()
	snap.Placements[0].Offset = 999
	snap.Clusters[0][0] = 42

	again := b.Snapshot()
	assert.Equal(t, -40.0, again.Placements[0].Offset)
	assert.Equal(t, 0, again.Clusters[0][0])
}

func TestBoard_ConcurrentUse(t *testing.T) {
	b := newTestBoard(t, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.Add(Marker{Position: i * 10})
			_ = b.Resize(float64(800 + i))
			_ = b.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, b.Len())
}

func TestBoard_UnnamedHoverSurvivesRemove(t *testing.T) {
	b := newTestBoard(t, 1000,
		Marker{Position: 0},
		Marker{Position: 30},
		Marker{Position: 80},
	)
	assert.Equal(t, []string{"#0", "#1", "#2"}, b.Keys())

	_, err := b.Hover("#1", PointerEnter)
	require.NoError(t, err)
	require.NoError(t, b.Remove("#0"))

	snap := b.Snapshot()
	require.Len(t, snap.Placements, 2)
	assert.Equal(t, 30.0, snap.Placements[0].Percent)
	assert.True(t, snap.Placements[0].Hovered)
	assert.Equal(t, 80.0, snap.Placements[1].Percent)
	assert.False(t, snap.Placements[1].Hovered)
	assert.Equal(t, []string{"#1", "#2"}, b.Keys())

	z, err := b.Hover("#1", PointerLeave)
	require.NoError(t, err)
	assert.Equal(t, 10, z)
}

func TestBoard_IDsAndUnnamedKeysAreSeparate(t *testing.T) {
	b := newTestBoard(t, 1000,
		Marker{Position: 0},
		Marker{ID: "0", Position: 80},
	)
	require.NoError(t, b.Add(Marker{ID: "1", Position: 50}))

	_, err := b.Hover("0", PointerEnter)
	require.NoError(t, err)
	snap := b.Snapshot()
	assert.False(t, snap.Placements[0].Hovered)
	assert.True(t, snap.Placements[1].Hovered)

	assert.ErrorIs(t, b.Add(Marker{ID: "#0", Position: 5}), ErrReservedID)
	assert.ErrorIs(t, b.Replace([]Marker{{ID: "#9", Position: 5}}), ErrReservedID)
	assert.Equal(t, 3, b.Len())

	require.NoError(t, b.Remove("0"))
	snap = b.Snapshot()
	require.Len(t, snap.Placements, 2)
	assert.Equal(t, 0.0, snap.Placements[0].Percent)
	assert.Equal(t, "1", snap.Placements[1].ID)
}

func TestBoard_ReplaceKeepsHoverByID(t *testing.T) {
	b := newTestBoard(t, 1000,
		Marker{ID: "a", Position: 0},
		Marker{ID: "b", Position: 50},
	)
	_, err := b.Hover("b", PointerEnter)
	require.NoError(t, err)

	require.NoError(t, b.Replace([]Marker{
		{Position: 10},
		{ID: "b", Position: 60},
	}))
	snap := b.Snapshot()
	assert.False(t, snap.Placements[0].Hovered)
	assert.True(t, snap.Placements[1].Hovered)
}
