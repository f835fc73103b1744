package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/pkg/util"
)

// Encoder runs the crop/trim encode. *ffmpeg.Executor satisfies it.
type Encoder interface {
	CropTrim(ctx context.Context, input string, opts ffmpeg.CropTrimOptions) error
}

// Result describes a finished export.
type Result struct {
	Output    string
	Size      int64
	HumanSize string
	Elapsed   time.Duration
}

// Outcome is delivered by Start.
type Outcome struct {
	Result *Result
	Err    error
}

// Exporter runs validated requests through an Encoder.
type Exporter struct {
	logger zerolog.Logger
	enc    Encoder
}

// New creates an exporter.
func New(logger zerolog.Logger, enc Encoder) *Exporter {
	return &Exporter{
		logger: logger.With().Str("component", "export").Logger(),
		enc:    enc,
	}
}

// Export validates req and encodes it. On failure the partial output is
// removed.
func (x *Exporter) Export(ctx context.Context, req Request, progress ffmpeg.ProgressFunc) (*Result, error) {
	if err := req.Validate(); err != nil {
		x.logger.Warn().Err(err).Msg("export rejected")
		return nil, err
	}
	if req.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if err := util.EnsureDir(filepath.Dir(req.Output)); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	start, duration := req.Window()
	opts := ffmpeg.CropTrimOptions{
		Output:       req.Output,
		Start:        start,
		Duration:     duration,
		X:            req.Crop.X,
		Y:            req.Crop.Y,
		Width:        req.Crop.W,
		Height:       req.Crop.H,
		ScaleWidth:   req.ScaleWidth,
		ScaleHeight:  req.ScaleHeight,
		AudioCodec:   req.AudioCodec,
		ProgressFunc: progress,
	}

	began := time.Now()
	if err := x.enc.CropTrim(ctx, req.Input, opts); err != nil {
		if rmErr := util.RemoveIfExists(req.Output); rmErr != nil {
			x.logger.Warn().Err(rmErr).Str("output", req.Output).Msg("failed to remove partial output")
		}
		return nil, err
	}

	size, err := util.FileSize(req.Output)
	if err != nil {
		return nil, fmt.Errorf("export produced no output: %w", err)
	}

	res := &Result{
		Output:    req.Output,
		Size:      size,
		HumanSize: humanize.Bytes(uint64(size)),
		Elapsed:   time.Since(began),
	}

	x.logger.Info().
		Str("output", res.Output).
		Str("size", res.HumanSize).
		Dur("elapsed", res.Elapsed).
		Msg("export finished")

	return res, nil
}

// Start runs Export on its own goroutine. The channel receives exactly one
// Outcome and is then closed.
func (x *Exporter) Start(ctx context.Context, req Request, progress ffmpeg.ProgressFunc) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := x.Export(ctx, req, progress)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

// IsValidation reports whether err is a request problem the user can fix,
// as opposed to an encoder failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoVideo) ||
		errors.Is(err, ErrInvalidCrop) ||
		errors.Is(err, ErrCropOutOfBounds) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrOutputIsInput)
}

// StderrPreview returns the encoder's diagnostic lines carried by err, if
// any.
func StderrPreview(err error) []string {
	var runErr *ffmpeg.RunError
	if errors.As(err, &runErr) {
		return runErr.Stderr
	}
	return nil
}
