package crop

import "testing"

func TestNewTransformLetterbox(t *testing.T) {
	tests := []struct {
		name  string
		frame Size
		vp    Viewport
		want  Transform
	}{
		{"exact fit", Size{640, 360}, Viewport{640, 360}, Transform{Scale: 1, ScaledW: 640, ScaledH: 360}},
		{"pillarbox", Size{640, 360}, Viewport{800, 360}, Transform{Scale: 1, OffsetX: 80, ScaledW: 640, ScaledH: 360}},
		{"letterbox", Size{640, 360}, Viewport{320, 400}, Transform{Scale: 0.5, OffsetY: 110, ScaledW: 320, ScaledH: 180}},
		{"empty viewport", Size{640, 360}, Viewport{}, Transform{}},
		{"empty frame", Size{}, Viewport{640, 360}, Transform{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTransform(tt.frame, tt.vp)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestTransformMapsPoints(t *testing.T) {
	xf := NewTransform(Size{640, 360}, Viewport{W: 320, H: 400})

	p := xf.ToDisplay(100, 60)
	if p != (Point{X: 50, Y: 140}) {
		t.Errorf("ToDisplay: got %+v", p)
	}
	x, y := xf.ToVideo(p)
	if x != 100 || y != 60 {
		t.Errorf("ToVideo: expected (100,60), got (%d,%d)", x, y)
	}
	if x, y := xf.ToVideo(Point{X: 0, Y: 0}); x != 0 || y != -220 {
		t.Errorf("positions outside the video map outside the frame, got (%d,%d)", x, y)
	}
}

func TestRoundTripWithinOnePixel(t *testing.T) {
	frames := []Size{{640, 360}, {1920, 1080}, {1080, 1920}, {3840, 1600}, {720, 576}}
	viewports := []Viewport{{1000, 700}, {333, 217}, {1280, 720}, {640, 1137}}
	rects := func(f Size) []Rect {
		return []Rect{
			Full(f),
			{X: 0, Y: 0, W: MinSize, H: MinSize},
			{X: f.W / 3, Y: f.H / 7, W: f.W / 2, H: f.H / 3},
			{X: f.W - 101, Y: f.H - 53, W: 101, H: 53},
		}
	}

	for _, f := range frames {
		for _, vp := range viewports {
			xf := NewTransform(f, vp)
			for _, r := range rects(f) {
				got := xf.BoxToVideo(xf.RectToDisplay(r))
				if d := absDiff(got.X, r.X) + absDiff(got.Y, r.Y); d > 2 {
					t.Errorf("frame %v viewport %v: origin %+v came back as %+v", f, vp, r, got)
				}
				if absDiff(got.W, r.W) > 1 || absDiff(got.H, r.H) > 1 {
					t.Errorf("frame %v viewport %v: size %+v came back as %+v", f, vp, r, got)
				}
			}
		}
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
