// Package export validates a crop rectangle and frame range and turns them
// into an ffmpeg crop/trim run.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kikiluvv/ezcrop/internal/crop"
	"github.com/kikiluvv/ezcrop/internal/playback"
)

// Validation errors. Each is reported to the user as a warning and aborts
// the export.
var (
	ErrNoVideo         = errors.New("no video loaded")
	ErrInvalidCrop     = errors.New("crop width and height must be positive")
	ErrCropOutOfBounds = errors.New("crop rectangle is out of video bounds")
	ErrInvalidRange    = errors.New("end frame must be after start frame")
	ErrOutputIsInput   = errors.New("output would overwrite the source video")
)

// Request is everything needed for one export.
type Request struct {
	Input  string
	Output string
	Frame  crop.Size
	Crop   crop.Rect
	Range  playback.FrameRange
	FPS    float64

	AudioCodec  string
	ScaleWidth  int
	ScaleHeight int
}

// Validate checks the request in the order the user would fix it.
func (r Request) Validate() error {
	if r.Input == "" {
		return ErrNoVideo
	}
	c := r.Crop
	if c.W <= 0 || c.H <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidCrop, c.W, c.H)
	}
	if c.X < 0 || c.Y < 0 || c.Right() > r.Frame.W || c.Bottom() > r.Frame.H {
		return fmt.Errorf("%w: %dx%d+%d+%d in %dx%d", ErrCropOutOfBounds, c.W, c.H, c.X, c.Y, r.Frame.W, r.Frame.H)
	}
	if _, d := r.Window(); d <= 0 {
		return fmt.Errorf("%w: frames %d..%d", ErrInvalidRange, r.Range.Start, r.Range.End)
	}
	if r.Output != "" && samePath(r.Input, r.Output) {
		return ErrOutputIsInput
	}
	return nil
}

// Window returns the encoder seek offset and clip duration.
func (r Request) Window() (start, duration time.Duration) {
	return r.Range.Window(r.FPS)
}

// DefaultOutputPath names the export <base>-cropped<ext>, placed in dir or,
// when dir is empty, beside the input.
func DefaultOutputPath(input, dir string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"-cropped"+ext)
}

// EnsureExtension appends ext unless path already ends with it, ignoring
// case.
func EnsureExtension(path, ext string) string {
	if ext == "" || strings.HasSuffix(strings.ToLower(path), strings.ToLower(ext)) {
		return path
	}
	return path + ext
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
