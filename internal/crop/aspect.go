package crop

import "fmt"

// Aspect is an optional width/height ratio constraint. The zero value is
// "Manual": no constraint.
type Aspect struct {
	ratio float64
}

// Manual is the unconstrained aspect.
var Manual = Aspect{}

// Ratio returns a constraint for width/height r. Non-positive ratios mean Manual.
func Ratio(r float64) Aspect {
	if r <= 0 {
		return Manual
	}
	return Aspect{ratio: r}
}

// RatioOf returns the constraint w:h.
func RatioOf(w, h int) Aspect {
	if w <= 0 || h <= 0 {
		return Manual
	}
	return Aspect{ratio: float64(w) / float64(h)}
}

// Locked reports whether a ratio is enforced.
func (a Aspect) Locked() bool { return a.ratio > 0 }

// Value returns the ratio, or 0 for Manual.
func (a Aspect) Value() float64 { return a.ratio }

func (a Aspect) String() string {
	if !a.Locked() {
		return "manual"
	}
	return fmt.Sprintf("%.4g:1", a.ratio)
}

// Preset is a named aspect choice offered to the user.
type Preset struct {
	Name   string
	Aspect Aspect
}

// Presets lists the aspect presets in display order.
var Presets = []Preset{
	{Name: "Manual", Aspect: Manual},
	{Name: "Square (1:1)", Aspect: RatioOf(1, 1)},
	{Name: "Portrait (4:5)", Aspect: RatioOf(4, 5)},
	{Name: "Landscape (1.91:1)", Aspect: Ratio(1.91)},
	{Name: "Story / Reel (9:16)", Aspect: RatioOf(9, 16)},
	{Name: "Carousel Portrait (4:5)", Aspect: RatioOf(4, 5)},
	{Name: "Carousel Square (1:1)", Aspect: RatioOf(1, 1)},
	{Name: "Carousel Landscape (1.91:1)", Aspect: Ratio(1.91)},
}

// PresetNames returns the preset names in display order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for _, p := range Presets {
		names = append(names, p.Name)
	}
	return names
}

// LookupPreset finds a preset by name.
func LookupPreset(name string) (Aspect, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p.Aspect, true
		}
	}
	return Manual, false
}

// fits reports whether w×h already satisfies the ratio to integer rounding,
// i.e. deriving either side from the other gives back the current value.
func (a Aspect) fits(w, h int) bool {
	if !a.Locked() || h <= 0 {
		return true
	}
	return int(float64(h)*a.ratio) == w || int(float64(w)/a.ratio) == h
}

// heightFor derives a height from a width.
func (a Aspect) heightFor(w int) int {
	return int(float64(w) / a.ratio)
}

// widthFor derives a width from a height.
func (a Aspect) widthFor(h int) int {
	return int(float64(h) * a.ratio)
}

// shrink reduces whichever dimension is too large for the ratio, keeping the
// result inside [floor, limit] where the frame allows it. When the frame is
// too small to hold the ratio with both sides at the floor, the ratio and the
// frame bounds win and one side drops below the floor: a 9:16 lock in a
// 100x40 frame yields 22x40.
func (a Aspect) shrink(w, h int, floor, limit Size) (int, int) {
	if !a.Locked() || a.fits(w, h) {
		return w, h
	}
	if float64(w)/float64(h) > a.ratio {
		w = a.widthFor(h)
	} else {
		h = a.heightFor(w)
	}
	if w < floor.W {
		w = floor.W
		h = a.heightFor(w)
		if h > limit.H {
			h = limit.H
			w = a.widthFor(h)
		}
	}
	if h < floor.H {
		h = floor.H
		w = a.widthFor(h)
		if w > limit.W {
			w = limit.W
		}
	}
	return w, h
}
