package ffmpeg

import (
	"context"
	"fmt"

	"github.com/kikiluvv/ezcrop/pkg/util"
)

// CropTrim writes the [Start, Start+Duration) window of input, cropped to the
// given rectangle, to opts.Output. Audio is stream-copied unless a codec is
// set.
func (e *Executor) CropTrim(ctx context.Context, input string, opts CropTrimOptions) error {
	args, err := cropTrimArgs(input, opts)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("duration", opts.Duration).
		Str("crop", fmt.Sprintf("%dx%d+%d+%d", opts.Width, opts.Height, opts.X, opts.Y)).
		Msg("exporting cropped clip")

	runOpts := RunOptions{
		Args:            args,
		Duration:        opts.Duration,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("crop export")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("crop export failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("crop export complete")
	return nil
}

func cropTrimArgs(input string, opts CropTrimOptions) ([]string, error) {
	switch {
	case input == "":
		return nil, fmt.Errorf("input path is required")
	case opts.Output == "":
		return nil, fmt.Errorf("output path is required")
	case opts.Duration <= 0:
		return nil, fmt.Errorf("invalid clip duration %v", opts.Duration)
	case opts.Width <= 0 || opts.Height <= 0:
		return nil, fmt.Errorf("invalid crop size %dx%d", opts.Width, opts.Height)
	}

	filter := NewFilterBuilder().
		Crop(opts.Width, opts.Height, opts.X, opts.Y).
		Scale(opts.ScaleWidth, opts.ScaleHeight).
		Build()

	audio := opts.AudioCodec
	if audio == "" {
		audio = DefaultAudioCodec
	}

	return []string{
		"-i", input,
		"-ss", util.FormatSeconds(opts.Start),
		"-t", util.FormatSeconds(opts.Duration),
		"-filter:v", filter,
		"-c:a", audio,
		opts.Output,
	}, nil
}
