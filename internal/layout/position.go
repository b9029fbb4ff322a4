package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPosition is returned when a marker's horizontal position is not a
// finite percentage between 0 and 100.
var ErrInvalidPosition = errors.New("invalid marker position")

// PositionError identifies the marker whose position could not be parsed.
type PositionError struct {
	Index int
	ID    string
	Raw   any
	Err   error
}

func (e *PositionError) Error() string {
	name := e.ID
	if name == "" {
		name = "#" + strconv.Itoa(e.Index)
	}
	return fmt.Sprintf("marker %s: position %q: %v", name, fmt.Sprint(e.Raw), e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// ParsePercent converts a raw position (as read from an attribute, a CSV cell
// or a decoded YAML/JSON value) into a percentage of the track width.
//
// Strings may carry surrounding whitespace and a trailing "%". The result must
// be finite and within [0, 100].
func ParsePercent(raw any) (float64, error) {
	var v float64

	switch p := raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidPosition)
	case string:
		s := strings.TrimSpace(p)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if s == "" {
			return 0, fmt.Errorf("%w: empty", ErrInvalidPosition)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: not a number", ErrInvalidPosition)
		}
		v = f
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: not a number", ErrInvalidPosition)
		}
		v = f
	case float64:
		v = p
	case float32:
		v = float64(p)
	case int:
		v = float64(p)
	case int8:
		v = float64(p)
	case int16:
		v = float64(p)
	case int32:
		v = float64(p)
	case int64:
		v = float64(p)
	case uint:
		v = float64(p)
	case uint8:
		v = float64(p)
	case uint16:
		v = float64(p)
	case uint32:
		v = float64(p)
	case uint64:
		v = float64(p)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidPosition, raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: not a finite number", ErrInvalidPosition)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: %g is outside 0-100", ErrInvalidPosition, v)
	}
	return v, nil
}
