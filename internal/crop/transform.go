package crop

import "math"

// Transform maps between display space and video pixel space for a video
// fitted (uniformly scaled and centred) into a viewport.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	// Scaled size of the video inside the viewport.
	ScaledW float64
	ScaledH float64
}

// fitEpsilon absorbs float error when truncating display positions back to
// video pixels.
const fitEpsilon = 1e-6

// NewTransform computes the scale-to-fit transform for a frame inside a viewport.
func NewTransform(frame Size, vp Viewport) Transform {
	if frame.W <= 0 || frame.H <= 0 || vp.W <= 0 || vp.H <= 0 {
		return Transform{}
	}
	scale := math.Min(vp.W/float64(frame.W), vp.H/float64(frame.H))
	sw := float64(frame.W) * scale
	sh := float64(frame.H) * scale
	return Transform{
		Scale:   scale,
		OffsetX: (vp.W - sw) / 2,
		OffsetY: (vp.H - sh) / 2,
		ScaledW: sw,
		ScaledH: sh,
	}
}

// Valid reports whether the transform can map positions.
func (t Transform) Valid() bool {
	return t.Scale > 0
}

// Area returns the display box covered by the scaled video.
func (t Transform) Area() Box {
	return Box{X: t.OffsetX, Y: t.OffsetY, W: t.ScaledW, H: t.ScaledH}
}

// ToVideoX maps a display x coordinate to a video column.
func (t Transform) ToVideoX(x float64) int {
	if !t.Valid() {
		return 0
	}
	return int(math.Floor((x-t.OffsetX)/t.Scale + fitEpsilon))
}

// ToVideoY maps a display y coordinate to a video row.
func (t Transform) ToVideoY(y float64) int {
	if !t.Valid() {
		return 0
	}
	return int(math.Floor((y-t.OffsetY)/t.Scale + fitEpsilon))
}

// ToVideo maps a display point to video pixel coordinates.
func (t Transform) ToVideo(p Point) (x, y int) {
	return t.ToVideoX(p.X), t.ToVideoY(p.Y)
}

// ToDisplay maps a video point to display space.
func (t Transform) ToDisplay(x, y int) Point {
	return Point{
		X: t.OffsetX + float64(x)*t.Scale,
		Y: t.OffsetY + float64(y)*t.Scale,
	}
}

// RectToDisplay maps a video rectangle into a display box.
func (t Transform) RectToDisplay(r Rect) Box {
	tl := t.ToDisplay(r.X, r.Y)
	return Box{X: tl.X, Y: tl.Y, W: float64(r.W) * t.Scale, H: float64(r.H) * t.Scale}
}

// BoxToVideo maps a display box back to a video rectangle.
func (t Transform) BoxToVideo(b Box) Rect {
	x, y := t.ToVideo(b.TopLeft())
	r, bt := t.ToVideo(Point{X: b.Right(), Y: b.Bottom()})
	return Rect{X: x, Y: y, W: r - x, H: bt - y}
}
