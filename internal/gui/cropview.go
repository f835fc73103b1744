package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/kikiluvv/ezcrop/internal/crop"
)

var (
	outlineColor = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	outlineWidth = float32(2)
)

// cropView is the transparent overlay stacked on the video image. It owns
// the crop editor state and feeds pointer input through crop.Update.
type cropView struct {
	widget.BaseWidget

	state    crop.State
	hint     crop.Hint
	onChange func(crop.Rect)
}

var (
	_ desktop.Mouseable  = (*cropView)(nil)
	_ desktop.Hoverable  = (*cropView)(nil)
	_ desktop.Cursorable = (*cropView)(nil)
	_ fyne.Draggable     = (*cropView)(nil)
)

func newCropView(m crop.Metrics, onChange func(crop.Rect)) *cropView {
	v := &cropView{
		state:    crop.New(crop.Size{}, crop.Viewport{}, m),
		onChange: onChange,
	}
	v.ExtendBaseWidget(v)
	return v
}

// Rect returns the crop rectangle in video pixels.
func (v *cropView) Rect() crop.Rect { return v.state.Rect() }

// Frame returns the loaded video's frame size.
func (v *cropView) Frame() crop.Size { return v.state.Frame() }

func (v *cropView) SetVideo(frame crop.Size) { v.dispatch(crop.VideoEvent{Frame: frame}) }

func (v *cropView) SetAspect(a crop.Aspect) { v.dispatch(crop.AspectEvent{Aspect: a}) }

func (v *cropView) SetRect(r crop.Rect) { v.dispatch(crop.RectEvent{Rect: r}) }

// Resize keeps the editor viewport in step with the widget size.
func (v *cropView) Resize(s fyne.Size) {
	v.BaseWidget.Resize(s)
	v.dispatch(crop.ViewportEvent{Size: crop.Viewport{W: float64(s.Width), H: float64(s.Height)}})
}

func (v *cropView) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	v.pointer(crop.PressEvent{At: toPoint(e.Position)})
}

func (v *cropView) MouseUp(*desktop.MouseEvent) {
	v.pointer(crop.ReleaseEvent{})
}

func (v *cropView) Dragged(e *fyne.DragEvent) {
	v.pointer(crop.MoveEvent{At: toPoint(e.Position)})
}

func (v *cropView) DragEnd() {
	v.pointer(crop.ReleaseEvent{})
}

func (v *cropView) MouseIn(e *desktop.MouseEvent) {
	v.pointer(crop.MoveEvent{At: toPoint(e.Position)})
}

func (v *cropView) MouseMoved(e *desktop.MouseEvent) {
	v.pointer(crop.MoveEvent{At: toPoint(e.Position)})
}

func (v *cropView) MouseOut() {
	v.hint = crop.HintCrosshair
}

func (v *cropView) Cursor() desktop.Cursor {
	return cursorFor(v.hint)
}

// pointer applies a pointer event; unlike programmatic events it also
// updates the cursor hint.
func (v *cropView) pointer(ev crop.Event) {
	eff := v.apply(ev)
	v.hint = eff.Cursor
}

func (v *cropView) dispatch(ev crop.Event) {
	v.apply(ev)
}

func (v *cropView) apply(ev crop.Event) crop.Effects {
	var eff crop.Effects
	v.state, eff = crop.Update(v.state, ev)
	if eff.Repaint || eff.RectChanged {
		v.Refresh()
	}
	if eff.RectChanged && v.onChange != nil {
		v.onChange(v.state.Rect())
	}
	return eff
}

func toPoint(p fyne.Position) crop.Point {
	return crop.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (v *cropView) CreateRenderer() fyne.WidgetRenderer {
	r := &cropViewRenderer{v: v, outline: newOutlineRect()}
	for i := range r.handles {
		r.handles[i] = newOutlineRect()
	}
	r.Refresh()
	return r
}

func newOutlineRect() *canvas.Rectangle {
	rect := canvas.NewRectangle(color.Transparent)
	rect.StrokeColor = outlineColor
	rect.StrokeWidth = outlineWidth
	return rect
}

type cropViewRenderer struct {
	v       *cropView
	outline *canvas.Rectangle
	handles [4]*canvas.Rectangle
}

func (r *cropViewRenderer) Layout(fyne.Size) {
	o := r.v.state.Overlay()
	place(r.outline, o.Outline)
	for i, h := range o.Handles {
		place(r.handles[i], h)
	}
}

func (r *cropViewRenderer) MinSize() fyne.Size { return fyne.NewSize(0, 0) }

// Refresh hides the overlay until a video is loaded.
func (r *cropViewRenderer) Refresh() {
	r.Layout(r.v.Size())
	visible := r.v.state.Transform().Valid()
	for _, obj := range r.Objects() {
		if visible {
			obj.Show()
		} else {
			obj.Hide()
		}
		canvas.Refresh(obj)
	}
}

func (r *cropViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.outline, r.handles[0], r.handles[1], r.handles[2], r.handles[3]}
}

func (r *cropViewRenderer) Destroy() {}

func place(obj fyne.CanvasObject, b crop.Box) {
	obj.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
	obj.Resize(fyne.NewSize(float32(b.W), float32(b.H)))
}
