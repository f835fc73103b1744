package crop

// Overlay is the geometry the host draws over the video: the crop outline and
// its four corner handles, all in display space.
type Overlay struct {
	Outline Box
	Handles [4]Box
	// Area is the display region covered by the scaled video.
	Area Box
}

var cornerOrder = [4]Handle{HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight}

// Overlay returns the current overlay geometry. It is a pure function of the
// state.
func (s State) Overlay() Overlay {
	box := s.DisplayRect()
	o := Overlay{Outline: box, Area: s.xf.Area()}
	for i, h := range cornerOrder {
		o.Handles[i] = CornerBox(box, h, s.metrics)
	}
	return o
}
