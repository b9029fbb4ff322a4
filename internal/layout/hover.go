package layout

// HoverState is the pointer state of a single marker.
type HoverState int

const (
	Baseline HoverState = iota
	Hovered
)

func (s HoverState) String() string {
	if s == Hovered {
		return "hovered"
	}
	return "baseline"
}

// PointerEvent is a pointer transition on a marker.
type PointerEvent int

const (
	PointerEnter PointerEvent = iota
	PointerLeave
)

// Next returns the state after ev. Repeated events leave the state unchanged.
func (s HoverState) Next(ev PointerEvent) HoverState {
	switch ev {
	case PointerEnter:
		return Hovered
	case PointerLeave:
		return Baseline
	default:
		return s
	}
}

// StackingOrder is the z value for a marker in state s whose cluster
// assigned it the order assigned.
func StackingOrder(s HoverState, assigned, hoverZ int) int {
	if s == Hovered {
		return hoverZ
	}
	return assigned
}
