package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/kikiluvv/ezcrop/pkg/util"
	"github.com/nfnt/resize"
)

// ExtractFrame decodes the frame at index as an image, seeking on the input
// side.
func (e *Executor) ExtractFrame(ctx context.Context, input string, index int, fps float64) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if index < 0 {
		return nil, fmt.Errorf("invalid frame index %d", index)
	}

	var buf bytes.Buffer
	opts := RunOptions{
		Args:   frameArgs(input, index, fps),
		Stdout: &buf,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("frame decode")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return nil, fmt.Errorf("frame %d decode failed: %w", index, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("no frame at index %d", index)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %d: %w", index, err)
	}

	return e.downscale(img), nil
}

func frameArgs(input string, index int, fps float64) []string {
	return []string{
		"-ss", util.FormatSeconds(util.FramesToDuration(index, fps)),
		"-i", input,
		"-frames:v", "1",
		"-an",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	}
}

// downscale bounds preview frames to the configured width. The crop editor
// works in source pixels from the probe, so only the preview shrinks.
func (e *Executor) downscale(img image.Image) image.Image {
	if e.previewMaxWidth <= 0 || img.Bounds().Dx() <= e.previewMaxWidth {
		return img
	}
	return resize.Resize(uint(e.previewMaxWidth), 0, img, resize.Bilinear)
}
