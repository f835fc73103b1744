package crop

import "math"

// MinSize is the smallest width or height a crop rectangle may have, in video pixels.
const MinSize = 32

// Size is a width/height pair in video pixels.
type Size struct {
	W int
	H int
}

// Rect is a crop rectangle in video pixel space.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Full returns the rectangle covering the whole frame.
func Full(s Size) Rect {
	return Rect{X: 0, Y: 0, W: s.W, H: s.H}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Within reports whether r satisfies every crop invariant for frame s.
func (r Rect) Within(s Size) bool {
	floor := minFor(s)
	return r.X >= 0 && r.Y >= 0 &&
		r.Right() <= s.W && r.Bottom() <= s.H &&
		r.W >= floor.W && r.H >= floor.H
}

// Point is a position in display space.
type Point struct {
	X float64
	Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Viewport is the size of the display area the video is fitted into.
type Viewport struct {
	W float64
	H float64
}

// Box is an axis-aligned rectangle in display space.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

func (b Box) Left() float64   { return b.X }
func (b Box) Top() float64    { return b.Y }
func (b Box) Right() float64  { return b.X + b.W }
func (b Box) Bottom() float64 { return b.Y + b.H }

// Contains reports whether p lies inside b, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() && p.Y >= b.Top() && p.Y <= b.Bottom()
}

// TopLeft returns the top-left corner.
func (b Box) TopLeft() Point { return Point{X: b.X, Y: b.Y} }

// minFor returns the minimum crop size for a frame. Frames smaller than
// MinSize can only be cropped to themselves.
func minFor(s Size) Size {
	return Size{W: min(MinSize, s.W), H: min(MinSize, s.H)}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampf(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
