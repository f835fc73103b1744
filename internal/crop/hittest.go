package crop

import "math"

// Handle identifies the part of the crop rectangle grabbed by the pointer.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleLeft
	HandleRight
	HandleTop
	HandleBottom
	HandleInterior
)

var handleNames = map[Handle]string{
	HandleNone:        "none",
	HandleTopLeft:     "top-left",
	HandleTopRight:    "top-right",
	HandleBottomLeft:  "bottom-left",
	HandleBottomRight: "bottom-right",
	HandleLeft:        "left",
	HandleRight:       "right",
	HandleTop:         "top",
	HandleBottom:      "bottom",
	HandleInterior:    "interior",
}

func (h Handle) String() string { return handleNames[h] }

// IsCorner reports whether h is one of the four corners.
func (h Handle) IsCorner() bool {
	return h >= HandleTopLeft && h <= HandleBottomRight
}

// IsEdge reports whether h is one of the four edges.
func (h Handle) IsEdge() bool {
	return h >= HandleLeft && h <= HandleBottom
}

// Hint is the pointer affordance shown for a position.
type Hint int

const (
	HintCrosshair Hint = iota
	HintMove
	HintResizeNWSE
	HintResizeNESW
	HintResizeHorizontal
	HintResizeVertical
)

var hintNames = map[Hint]string{
	HintCrosshair:        "crosshair",
	HintMove:             "move",
	HintResizeNWSE:       "resize-nwse",
	HintResizeNESW:       "resize-nesw",
	HintResizeHorizontal: "resize-h",
	HintResizeVertical:   "resize-v",
}

func (h Hint) String() string { return hintNames[h] }

// Metrics sizes the interactive parts of the overlay, in display units.
type Metrics struct {
	CornerSize float64
	EdgeMargin float64
}

// DefaultMetrics are the handle sizes used when none are configured.
var DefaultMetrics = Metrics{CornerSize: 15, EdgeMargin: 10}

// Hit is the result of a hit test.
type Hit struct {
	Handle Handle
	Hint   Hint
}

// hitRule is a single hit-test predicate. Rules are evaluated in order and
// the first match wins.
type hitRule struct {
	handle Handle
	hint   Hint
	// manualOnly rules are skipped while an aspect ratio is locked.
	manualOnly bool
	match      func(p Point, b Box, m Metrics) bool
}

var hitRules = []hitRule{
	{HandleTopLeft, HintResizeNWSE, false, func(p Point, b Box, m Metrics) bool {
		return CornerBox(b, HandleTopLeft, m).Contains(p)
	}},
	{HandleTopRight, HintResizeNESW, false, func(p Point, b Box, m Metrics) bool {
		return CornerBox(b, HandleTopRight, m).Contains(p)
	}},
	{HandleBottomLeft, HintResizeNESW, false, func(p Point, b Box, m Metrics) bool {
		return CornerBox(b, HandleBottomLeft, m).Contains(p)
	}},
	{HandleBottomRight, HintResizeNWSE, false, func(p Point, b Box, m Metrics) bool {
		return CornerBox(b, HandleBottomRight, m).Contains(p)
	}},
	{HandleLeft, HintResizeHorizontal, true, func(p Point, b Box, m Metrics) bool {
		return near(p.X, b.Left(), m.EdgeMargin) && between(p.Y, b.Top(), b.Bottom())
	}},
	{HandleRight, HintResizeHorizontal, true, func(p Point, b Box, m Metrics) bool {
		return near(p.X, b.Right(), m.EdgeMargin) && between(p.Y, b.Top(), b.Bottom())
	}},
	{HandleTop, HintResizeVertical, true, func(p Point, b Box, m Metrics) bool {
		return near(p.Y, b.Top(), m.EdgeMargin) && between(p.X, b.Left(), b.Right())
	}},
	{HandleBottom, HintResizeVertical, true, func(p Point, b Box, m Metrics) bool {
		return near(p.Y, b.Bottom(), m.EdgeMargin) && between(p.X, b.Left(), b.Right())
	}},
	{HandleInterior, HintMove, false, func(p Point, b Box, _ Metrics) bool {
		return p.X > b.Left() && p.X < b.Right() && p.Y > b.Top() && p.Y < b.Bottom()
	}},
}

// HitTest classifies a display position against the crop box.
func HitTest(p Point, b Box, m Metrics, locked bool) Hit {
	for _, r := range hitRules {
		if r.manualOnly && locked {
			continue
		}
		if r.match(p, b, m) {
			return Hit{Handle: r.handle, Hint: r.hint}
		}
	}
	return Hit{Handle: HandleNone, Hint: HintCrosshair}
}

// CornerBox returns the grab square for a corner, placed inside the box.
func CornerBox(b Box, h Handle, m Metrics) Box {
	s := m.CornerSize
	switch h {
	case HandleTopLeft:
		return Box{X: b.Left(), Y: b.Top(), W: s, H: s}
	case HandleTopRight:
		return Box{X: b.Right() - s, Y: b.Top(), W: s, H: s}
	case HandleBottomLeft:
		return Box{X: b.Left(), Y: b.Bottom() - s, W: s, H: s}
	case HandleBottomRight:
		return Box{X: b.Right() - s, Y: b.Bottom() - s, W: s, H: s}
	}
	return Box{}
}

func near(v, edge, margin float64) bool {
	return math.Abs(v-edge) < margin
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
