package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markerstack/internal/layout"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLayoutCmd_StdoutJSON(t *testing.T) {
	input := writeInput(t, "markers.csv", "id,position\na,0\nb,3\nc,3.2\nd,50\ne,90\n")

	stdout, _, err := execute(t, "layout", input, "--width", "1000", "--format", "json", "--output", "-")
	require.NoError(t, err)

	var result layout.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, [][]int{{0, 1, 2}, {3}, {4}}, result.Clusters)
	assert.Equal(t, -80.0, result.Placements[0].Offset)
}

func TestLayoutCmd_MultipleWidthsWriteFiles(t *testing.T) {
	input := writeInput(t, "markers.yaml", "markers:\n  - id: a\n    position: 10\n  - id: b\n    position: 15\n")
	outDir := t.TempDir()
	output := filepath.Join(outDir, "track.css")

	stdout, _, err := execute(t, "layout", input, "--width", "500", "--width", "1200", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "track-500.css")
	assert.Contains(t, stdout, "track-1200.css")

	narrow, err := os.ReadFile(filepath.Join(outDir, "track-500.css"))
	require.NoError(t, err)
	assert.Contains(t, string(narrow), `[data-marker="a"] { left: 10%; top: calc(50% - 40px); z-index: 10; }`)

	wide, err := os.ReadFile(filepath.Join(outDir, "track-1200.css"))
	require.NoError(t, err)
	assert.Contains(t, string(wide), `[data-marker="a"] { left: 10%; top: 50%; z-index: 10; }`)
}

func TestLayoutCmd_UsesFileTrackWidth(t *testing.T) {
	input := writeInput(t, "markers.yaml", "track:\n  width: 200\nmarkers:\n  - position: 10\n  - position: 30\n")

	stdout, _, err := execute(t, "layout", input, "--format", "json", "-o", "-")
	require.NoError(t, err)

	var result layout.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 200.0, result.Width)
	assert.Len(t, result.Clusters, 1, "20px and 60px are 40px apart")
}

func TestLayoutCmd_InvalidPosition(t *testing.T) {
	input := writeInput(t, "markers.csv", "id,position\na,10\nbroken,ten\n")

	_, _, err := execute(t, "layout", input, "-o", "-")
	require.Error(t, err)
	assert.ErrorIs(t, err, layout.ErrInvalidPosition)
	assert.Contains(t, err.Error(), "broken")
}

func TestLayoutCmd_OutOfRangePositions(t *testing.T) {
	for _, pos := range []string{"-5", "120%", "NaN", "Inf"} {
		t.Run(pos, func(t *testing.T) {
			input := writeInput(t, "markers.csv", "id,position\na,10\nbroken,"+pos+"\n")

			_, _, err := execute(t, "layout", input, "-o", "-")
			require.Error(t, err)
			assert.ErrorIs(t, err, layout.ErrInvalidPosition)
			assert.Contains(t, err.Error(), "marker broken")

			var perr *layout.PositionError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, 1, perr.Index)
			assert.Equal(t, pos, perr.Raw)
		})
	}
}

func TestLayoutCmd_UnknownFormat(t *testing.T) {
	input := writeInput(t, "markers.csv", "position\n10\n")

	_, _, err := execute(t, "layout", input, "--format", "pdf", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestLayoutCmd_ConfigFile(t *testing.T) {
	cfg := writeInput(t, "markerstack.yaml", "layout:\n  verticalSpacing: 20\nrender:\n  format: json\n")
	input := writeInput(t, "markers.csv", "position\n0\n1\n")

	stdout, _, err := execute(t, "--config", cfg, "layout", input, "-o", "-")
	require.NoError(t, err)

	var result layout.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, -10.0, result.Placements[0].Offset)
	assert.Equal(t, 10.0, result.Placements[1].Offset)
}

func TestProgressCmd(t *testing.T) {
	input := writeInput(t, "readers.csv", "reader,page\namy,0\nben,3\ncat,50\ndan,100\n")

	stdout, stderr, err := execute(t, "progress", input, "--start", "0", "--end", "100", "--limit", "3", "--width", "1000", "--format", "json", "-o", "-")
	require.NoError(t, err)

	assert.Contains(t, stderr, "Top 3 readers (pages 0-100):")
	assert.Contains(t, stderr, "dan")
	assert.NotContains(t, stderr, "amy")

	var result layout.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Placements, 3)
	assert.Equal(t, "dan", result.Placements[0].ID)
	assert.Equal(t, 1000.0, result.Placements[0].X)
	assert.Equal(t, [][]int{{2}, {1}, {0}}, result.Clusters)
}

func TestProgressCmd_NoReaders(t *testing.T) {
	input := writeInput(t, "markers.csv", "position\n10\n")

	_, _, err := execute(t, "progress", input, "-o", "-")
	assert.ErrorIs(t, err, errNoReaders)
}
