// Package playback tracks the current frame of a loaded video, the start/end
// markers of the subclip, and play/pause at the stream's native rate.
package playback

import (
	"sync"
	"time"

	"github.com/kikiluvv/ezcrop/pkg/util"
)

// FrameRange is an inclusive [Start, End] span of frame indices.
type FrameRange struct {
	Start int
	End   int
}

// Len returns the number of frames in the range; it is zero or negative
// when End precedes Start.
func (r FrameRange) Len() int { return r.End - r.Start + 1 }

// Window converts the range into an encoder seek offset and duration.
func (r FrameRange) Window(fps float64) (start, duration time.Duration) {
	return util.FramesToDuration(r.Start, fps), util.FramesToDuration(r.Len(), fps)
}

// Controller is safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	frameCount int
	fps        float64
	index      int
	rng        FrameRange
	playing    bool
}

// NewController returns a controller with nothing loaded.
func NewController() *Controller {
	return &Controller{}
}

// Open resets the controller for a newly loaded video.
func (c *Controller) Open(frameCount int, fps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frameCount = max(frameCount, 0)
	c.fps = fps
	c.index = 0
	c.rng = FrameRange{Start: 0, End: c.frameCount - 1}
	c.playing = false
}

// Loaded reports whether a video with at least one frame is open.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount > 0
}

func (c *Controller) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount
}

func (c *Controller) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// Current returns the current frame index.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Seek moves to frame i. Out-of-range seeks are ignored and report false.
func (c *Controller) Seek(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= c.frameCount {
		return false
	}
	c.index = i
	return true
}

// MarkStart sets the range start to the current frame.
func (c *Controller) MarkStart() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng.Start = c.index
	return c.index
}

// MarkEnd sets the range end to the current frame.
func (c *Controller) MarkEnd() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng.End = c.index
	return c.index
}

// Range returns the marked subclip.
func (c *Controller) Range() FrameRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng
}

// Toggle flips between playing and paused and returns the new state. Without
// a loaded video or a usable frame rate it stays paused.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing || c.frameCount == 0 || c.fps <= 0 {
		c.playing = false
	} else {
		c.playing = true
	}
	return c.playing
}

// Stop pauses playback.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Interval is the time between frames at the native rate.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.fps)
}

// Advance steps to the next frame. Stepping past the end marker or the last
// frame stops playback, leaves the index unchanged and reports false.
func (c *Controller) Advance() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.index + 1
	if next > c.rng.End || next >= c.frameCount {
		c.playing = false
		return c.index, false
	}
	c.index = next
	return next, true
}
