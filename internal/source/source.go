// Package source reads marker and reader-progress files.
//
// CSV files carry a header row; column names are matched case-insensitively.
// A "position" column yields markers; without one, a "timestamp" column
// yields markers spread by time. "reader" and "page" columns yield reading
// progress entries. YAML files use the Document layout.
//
// Positions are passed through untouched: validating them is the layout
// engine's job, so a bad cell surfaces as a layout.PositionError naming the
// marker.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"markerstack/internal/layout"
	"markerstack/internal/progress"
)

var (
	// ErrMissingColumn is returned when a CSV file has neither marker nor
	// progress columns.
	ErrMissingColumn = errors.New("missing column")

	// ErrUnsupportedFile is returned for file extensions Load does not know.
	ErrUnsupportedFile = errors.New("unsupported input file")
)

// Document is the decoded content of an input file.
type Document struct {
	Track struct {
		Width float64 `yaml:"width"` // Track width in pixels, 0 when the file does not set one
	} `yaml:"track"`
	Markers []layout.Marker  `yaml:"markers"`
	Readers []progress.Entry `yaml:"readers"`
}

// Load reads the file at path, choosing the decoder by extension.
func Load(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("error opening input file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(file)
	case ".yaml", ".yml":
		return ReadYAML(file)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// ReadYAML decodes a YAML document.
func ReadYAML(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("error parsing YAML input: %w", err)
	}
	return doc, nil
}

// ReadCSV decodes a CSV file with a header row.
func ReadCSV(r io.Reader) (Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Document{}, fmt.Errorf("error reading CSV header: %w", err)
	}

	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	_, hasPosition := columnMap["position"]
	_, hasTimestamp := columnMap["timestamp"]
	_, hasReader := columnMap["reader"]
	_, hasPage := columnMap["page"]
	byTime := !hasPosition && hasTimestamp
	if !hasPosition && !hasTimestamp && !(hasReader && hasPage) {
		return Document{}, fmt.Errorf("%w: need \"position\", \"timestamp\", or \"reader\" and \"page\"; available columns: %v", ErrMissingColumn, header)
	}

	var doc Document
	var times []time.Time
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Document{}, fmt.Errorf("error reading CSV: %w", err)
		}

		if hasPosition {
			doc.Markers = append(doc.Markers, layout.Marker{
				ID:       cell(record, columnMap, "id"),
				Label:    cell(record, columnMap, "label"),
				Position: cell(record, columnMap, "position"),
			})
		}
		if byTime {
			ts, err := parseTimestamp(cell(record, columnMap, "timestamp"))
			if err != nil {
				return Document{}, fmt.Errorf("row %d: %w", row, err)
			}
			times = append(times, ts)
			doc.Markers = append(doc.Markers, layout.Marker{
				ID:    cell(record, columnMap, "id"),
				Label: cell(record, columnMap, "label"),
			})
		}
		if hasReader && hasPage {
			entry, err := parseEntry(record, columnMap)
			if err != nil {
				return Document{}, fmt.Errorf("row %d: %w", row, err)
			}
			doc.Readers = append(doc.Readers, entry)
		}
	}

	for i, pct := range TimePercents(times) {
		doc.Markers[i].Position = pct
	}
	return doc, nil
}

// TimePercents places timestamps proportionally between the earliest and the
// latest. A single timestamp, or a set with no spread, sits at the middle.
func TimePercents(times []time.Time) []float64 {
	if len(times) == 0 {
		return nil
	}

	first, last := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}

	out := make([]float64, len(times))
	timeRange := last.Sub(first)
	for i, t := range times {
		if timeRange <= 0 {
			out[i] = 50
			continue
		}
		out[i] = float64(t.Sub(first)) / float64(timeRange) * 100
	}
	return out
}

func parseEntry(record []string, columnMap map[string]int) (progress.Entry, error) {
	pageStr := cell(record, columnMap, "page")
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return progress.Entry{}, fmt.Errorf("invalid page %q: %w", pageStr, err)
	}

	entry := progress.Entry{
		Reader: cell(record, columnMap, "reader"),
		Page:   page,
	}
	if ts := cell(record, columnMap, "updated_at"); ts != "" {
		entry.UpdatedAt, err = parseTimestamp(ts)
		if err != nil {
			return progress.Entry{}, err
		}
	}
	return entry, nil
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, format := range timestampFormats {
		var t time.Time
		t, err = time.Parse(format, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %w", s, err)
}

// cell returns the trimmed value of a named column, or "" when the column
// is absent or the row is short.
func cell(record []string, columnMap map[string]int, name string) string {
	i, ok := columnMap[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
