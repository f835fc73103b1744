package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder assembles a comma-separated -filter:v chain.
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Crop adds crop=w:h:x:y. Empty sizes are skipped so chaining continues.
func (fb *FilterBuilder) Crop(width, height, x, y int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("crop=%d:%d:%d:%d", width, height, x, y))
	return fb
}

// Scale adds scale=w:h. A zero side keeps the aspect (-2 keeps it even for
// encoders that need it).
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 && height <= 0 {
		return fb
	}
	if width <= 0 {
		width = -2
	}
	if height <= 0 {
		height = -2
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	return strings.Join(fb.filters, ",")
}
