// Package crop implements the interactive crop-rectangle editor: an explicit
// State value, pure transitions driven by pointer and programmatic events, and
// the display/video coordinate mapping the overlay is drawn with.
//
// The editor never reports errors. Every out-of-range input is clamped to the
// nearest valid rectangle.
package crop

// Mode is the drag state machine's current state.
type Mode int

const (
	Idle Mode = iota
	Moving
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Moving:
		return "moving"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Drag is the transient pointer capture.
type Drag struct {
	Mode   Mode
	Handle Handle
	// Offset is the press position relative to the display rectangle's
	// top-left corner, used while Moving.
	Offset Point
}

// Effects tell the host what to do after a transition.
type Effects struct {
	Repaint     bool
	RectChanged bool
	Cursor      Hint
}

// State is the full editor state. It is a value: transitions return a new
// State and never mutate the receiver.
type State struct {
	frame    Size
	viewport Viewport
	xf       Transform
	rect     Rect
	aspect   Aspect
	metrics  Metrics
	drag     Drag
}

// New returns an editor for a frame shown in a viewport, with the rectangle
// covering the full frame.
func New(frame Size, vp Viewport, m Metrics) State {
	if m.CornerSize <= 0 {
		m.CornerSize = DefaultMetrics.CornerSize
	}
	if m.EdgeMargin <= 0 {
		m.EdgeMargin = DefaultMetrics.EdgeMargin
	}
	return State{
		frame:    frame,
		viewport: vp,
		xf:       NewTransform(frame, vp),
		rect:     Full(frame),
		metrics:  m,
	}
}

func (s State) Frame() Size          { return s.frame }
func (s State) Viewport() Viewport   { return s.viewport }
func (s State) Transform() Transform { return s.xf }
func (s State) Aspect() Aspect       { return s.aspect }
func (s State) Metrics() Metrics     { return s.metrics }
func (s State) Drag() Drag           { return s.drag }

// Rect returns the current crop rectangle in video pixels.
func (s State) Rect() Rect { return s.rect }

// DisplayRect returns the crop rectangle in display space.
func (s State) DisplayRect() Box {
	return s.xf.RectToDisplay(s.rect)
}

// SetRectangle clamps r into the frame and, when an aspect is locked, shrinks
// the oversized dimension while keeping the top-left corner anchored.
func (s State) SetRectangle(r Rect) State {
	s.rect = s.clampRect(r)
	return s
}

func (s State) clampRect(r Rect) Rect {
	floor := minFor(s.frame)
	x := clamp(r.X, 0, s.frame.W-floor.W)
	y := clamp(r.Y, 0, s.frame.H-floor.H)
	w := clamp(r.W, floor.W, s.frame.W-x)
	h := clamp(r.H, floor.H, s.frame.H-y)
	if s.aspect.Locked() {
		w, h = s.aspect.shrink(w, h, floor, s.frame)
		// Raising a side to the minimum can push past the frame edge; the
		// origin gives way so bounds and ratio both hold.
		x = min(x, s.frame.W-w)
		y = min(y, s.frame.H-h)
	}
	return Rect{X: x, Y: y, W: w, H: h}
}

// SetAspect stores the constraint and re-snaps the rectangle to it.
func (s State) SetAspect(a Aspect) State {
	s.aspect = a
	return s.SnapToAspect()
}

// SnapToAspect fits the rectangle to the locked ratio around its centre,
// then re-clamps it into the frame.
func (s State) SnapToAspect() State {
	if !s.aspect.Locked() {
		return s
	}
	r := s.rect
	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	w, h := s.aspect.shrink(r.W, r.H, minFor(s.frame), s.frame)
	s.rect = Rect{
		X: clamp(cx-w/2, 0, s.frame.W-w),
		Y: clamp(cy-h/2, 0, s.frame.H-h),
		W: w,
		H: h,
	}
	return s
}

// ResizeViewport recomputes the display transform. The rectangle is unchanged.
func (s State) ResizeViewport(vp Viewport) State {
	s.viewport = vp
	s.xf = NewTransform(s.frame, vp)
	return s
}

// LoadVideo switches to a new frame size and resets the rectangle to the
// full frame.
func (s State) LoadVideo(frame Size) State {
	s.frame = frame
	s.xf = NewTransform(frame, s.viewport)
	s.rect = Full(frame)
	s.drag = Drag{}
	return s
}

// Hover returns the cursor hint for a pointer position without changing state.
func (s State) Hover(p Point) Hint {
	return HitTest(p, s.DisplayRect(), s.metrics, s.aspect.Locked()).Hint
}

// Press starts a move or resize when p lands on the rectangle.
func (s State) Press(p Point) (State, Effects) {
	if !s.xf.Valid() {
		return s, Effects{}
	}
	box := s.DisplayRect()
	hit := HitTest(p, box, s.metrics, s.aspect.Locked())
	switch {
	case hit.Handle.IsCorner(), hit.Handle.IsEdge():
		s.drag = Drag{Mode: Resizing, Handle: hit.Handle}
	case hit.Handle == HandleInterior:
		s.drag = Drag{Mode: Moving, Handle: HandleInterior, Offset: p.Sub(box.TopLeft())}
	default:
		s.drag = Drag{}
	}
	return s, Effects{Cursor: hit.Hint}
}

// Move updates the hover hint and, while a drag is captured, the rectangle.
func (s State) Move(p Point) (State, Effects) {
	eff := Effects{Cursor: s.Hover(p)}
	if s.drag.Mode == Idle || !s.xf.Valid() {
		return s, eff
	}
	prev := s.rect
	switch {
	case s.drag.Mode == Moving:
		s = s.moveTo(p)
	case s.drag.Handle.IsCorner():
		s = s.resizeCorner(s.drag.Handle, p)
	case s.drag.Handle.IsEdge():
		s = s.resizeEdge(s.drag.Handle, p)
	}
	eff.Repaint = true
	eff.RectChanged = s.rect != prev
	return s, eff
}

// Release ends any drag.
func (s State) Release() (State, Effects) {
	wasDragging := s.drag.Mode != Idle
	s.drag = Drag{}
	return s, Effects{Repaint: wasDragging, Cursor: HintCrosshair}
}

func (s State) moveTo(p Point) State {
	box := s.DisplayRect()
	area := s.xf.Area()
	tl := p.Sub(s.drag.Offset)
	nx := clampf(tl.X, area.Left(), area.Right()-box.W)
	ny := clampf(tl.Y, area.Top(), area.Bottom()-box.H)
	return s.SetRectangle(Rect{
		X: s.xf.ToVideoX(nx),
		Y: s.xf.ToVideoY(ny),
		W: s.rect.W,
		H: s.rect.H,
	})
}

func (s State) resizeCorner(h Handle, p Point) State {
	floor := minFor(s.frame)
	mx := clamp(s.xf.ToVideoX(p.X), 0, s.frame.W)
	my := clamp(s.xf.ToVideoY(p.Y), 0, s.frame.H)
	r := s.rect

	var nx, ny, nw, nh int
	switch h {
	case HandleTopLeft:
		nx = min(mx, r.Right()-floor.W)
		ny = min(my, r.Bottom()-floor.H)
		nw = r.W + (r.X - nx)
		nh = r.H + (r.Y - ny)
	case HandleTopRight:
		nx = r.X
		ny = min(my, r.Bottom()-floor.H)
		nw = max(floor.W, mx-r.X)
		nh = r.H + (r.Y - ny)
	case HandleBottomLeft:
		nx = min(mx, r.Right()-floor.W)
		ny = r.Y
		nw = r.W + (r.X - nx)
		nh = max(floor.H, my-r.Y)
	case HandleBottomRight:
		nx, ny = r.X, r.Y
		nw = max(floor.W, mx-r.X)
		nh = max(floor.H, my-r.Y)
	default:
		return s
	}

	// Height always follows width; on bottom overflow the width follows the
	// clipped height instead and the anchor on that axis drifts.
	if s.aspect.Locked() {
		nw = max(floor.W, nw)
		nh = s.aspect.heightFor(nw)
		if ny+nh > s.frame.H {
			nh = s.frame.H - ny
			nw = s.aspect.widthFor(nh)
		}
	}
	return s.SetRectangle(Rect{X: nx, Y: ny, W: nw, H: nh})
}

func (s State) resizeEdge(h Handle, p Point) State {
	if s.aspect.Locked() {
		return s
	}
	floor := minFor(s.frame)
	area := s.xf.Area()
	r := s.rect
	switch h {
	case HandleLeft:
		vx := s.xf.ToVideoX(clampf(p.X, area.Left(), area.Right()))
		nx := min(vx, r.Right()-floor.W)
		return s.SetRectangle(Rect{X: nx, Y: r.Y, W: r.W + (r.X - nx), H: r.H})
	case HandleRight:
		vx := s.xf.ToVideoX(clampf(p.X, area.Left(), area.Right()))
		nw := max(floor.W, min(vx-r.X, s.frame.W-r.X))
		return s.SetRectangle(Rect{X: r.X, Y: r.Y, W: nw, H: r.H})
	case HandleTop:
		vy := s.xf.ToVideoY(clampf(p.Y, area.Top(), area.Bottom()))
		ny := min(vy, r.Bottom()-floor.H)
		return s.SetRectangle(Rect{X: r.X, Y: ny, W: r.W, H: r.H + (r.Y - ny)})
	case HandleBottom:
		vy := s.xf.ToVideoY(clampf(p.Y, area.Top(), area.Bottom()))
		nh := max(floor.H, min(vy-r.Y, s.frame.H-r.Y))
		return s.SetRectangle(Rect{X: r.X, Y: r.Y, W: r.W, H: nh})
	}
	return s
}
