package crop

// Event is an input to the editor. Hosts feed events through Update so the
// editor stays independent of any toolkit's dispatch.
type Event interface {
	apply(s State) (State, Effects)
}

// Update applies ev to s and returns the new state and the host effects.
func Update(s State, ev Event) (State, Effects) {
	if ev == nil {
		return s, Effects{}
	}
	return ev.apply(s)
}

// PressEvent is a primary-button press at a display position.
type PressEvent struct{ At Point }

// MoveEvent is a pointer move, with or without a button held.
type MoveEvent struct{ At Point }

// ReleaseEvent is a primary-button release.
type ReleaseEvent struct{}

// ViewportEvent reports a new display size.
type ViewportEvent struct{ Size Viewport }

// VideoEvent reports a newly loaded video's frame size.
type VideoEvent struct{ Frame Size }

// AspectEvent selects an aspect constraint (Manual to unlock).
type AspectEvent struct{ Aspect Aspect }

// RectEvent sets the rectangle from typed-in values.
type RectEvent struct{ Rect Rect }

func (e PressEvent) apply(s State) (State, Effects) { return s.Press(e.At) }

func (e MoveEvent) apply(s State) (State, Effects) { return s.Move(e.At) }

func (ReleaseEvent) apply(s State) (State, Effects) { return s.Release() }

func (e ViewportEvent) apply(s State) (State, Effects) {
	return s.ResizeViewport(e.Size), Effects{Repaint: true}
}

func (e VideoEvent) apply(s State) (State, Effects) {
	return s.LoadVideo(e.Frame), Effects{Repaint: true, RectChanged: true}
}

func (e AspectEvent) apply(s State) (State, Effects) {
	return changed(s, s.SetAspect(e.Aspect))
}

func (e RectEvent) apply(s State) (State, Effects) {
	return changed(s, s.SetRectangle(e.Rect))
}

func changed(prev, next State) (State, Effects) {
	return next, Effects{Repaint: true, RectChanged: prev.rect != next.rect}
}
