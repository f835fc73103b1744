package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/ezcrop/internal/crop"
	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/internal/playback"
)

type fakeEncoder struct {
	got     ffmpeg.CropTrimOptions
	input   string
	write   []byte
	failErr error
}

func (f *fakeEncoder) CropTrim(ctx context.Context, input string, opts ffmpeg.CropTrimOptions) error {
	f.input = input
	f.got = opts
	if f.write != nil {
		if err := os.WriteFile(opts.Output, f.write, 0644); err != nil {
			return err
		}
	}
	if opts.ProgressFunc != nil {
		opts.ProgressFunc(&ffmpeg.Progress{Percentage: 100, Done: f.failErr == nil})
	}
	return f.failErr
}

func validRequest(dir string) Request {
	return Request{
		Input:  "/videos/source.mp4",
		Output: filepath.Join(dir, "out", "source-cropped.mp4"),
		Frame:  crop.Size{W: 640, H: 360},
		Crop:   crop.Rect{X: 140, Y: 0, W: 360, H: 360},
		Range:  playback.FrameRange{Start: 25, End: 74},
		FPS:    25,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Request)
		want error
	}{
		{"valid", func(*Request) {}, nil},
		{"no video", func(r *Request) { r.Input = "" }, ErrNoVideo},
		{"zero width", func(r *Request) { r.Crop.W = 0 }, ErrInvalidCrop},
		{"negative height", func(r *Request) { r.Crop.H = -4 }, ErrInvalidCrop},
		{"past right edge", func(r *Request) { r.Crop.X = 300 }, ErrCropOutOfBounds},
		{"negative origin", func(r *Request) { r.Crop.Y = -1 }, ErrCropOutOfBounds},
		{"end before start", func(r *Request) { r.Range = playback.FrameRange{Start: 50, End: 40} }, ErrInvalidRange},
		{"no frame rate", func(r *Request) { r.FPS = 0 }, ErrInvalidRange},
		{"overwrite source", func(r *Request) { r.Output = r.Input }, ErrOutputIsInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(t.TempDir())
			tt.edit(&req)
			err := req.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !IsValidation(err) {
				t.Errorf("%v must count as a validation error", err)
			}
		})
	}
}

func TestSingleFrameRangeIsValid(t *testing.T) {
	req := validRequest(t.TempDir())
	req.Range = playback.FrameRange{Start: 10, End: 10}
	if err := req.Validate(); err != nil {
		t.Errorf("a one-frame range must be accepted, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, want string
	}{
		{"/videos/holiday.mov", "/exports", "/exports/holiday-cropped.mov"},
		{"/videos/holiday.mov", "", "/videos/holiday-cropped.mov"},
		{"/videos/clip.v2.mp4", "/out", "/out/clip.v2-cropped.mp4"},
		{"/videos/noext", "/out", "/out/noext-cropped"},
	}
	for _, tt := range tests {
		if got := DefaultOutputPath(tt.input, tt.dir); got != filepath.FromSlash(tt.want) {
			t.Errorf("DefaultOutputPath(%q, %q) = %q, want %q", tt.input, tt.dir, got, tt.want)
		}
	}
}

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"/out/clip", ".mp4", "/out/clip.mp4"},
		{"/out/clip.MP4", ".mp4", "/out/clip.MP4"},
		{"/out/clip.mov", ".mp4", "/out/clip.mov.mp4"},
		{"/out/clip", "", "/out/clip"},
	}
	for _, tt := range tests {
		if got := EnsureExtension(tt.path, tt.ext); got != tt.want {
			t.Errorf("EnsureExtension(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestExportPassesWindowAndCrop(t *testing.T) {
	enc := &fakeEncoder{write: make([]byte, 2048)}
	x := New(zerolog.Nop(), enc)
	req := validRequest(t.TempDir())

	var last ffmpeg.Progress
	res, err := x.Export(context.Background(), req, func(p *ffmpeg.Progress) { last = *p })
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if enc.input != req.Input {
		t.Errorf("expected input %q, got %q", req.Input, enc.input)
	}
	if enc.got.Start != time.Second || enc.got.Duration != 2*time.Second {
		t.Errorf("expected 1s + 2s window, got %v + %v", enc.got.Start, enc.got.Duration)
	}
	if enc.got.X != 140 || enc.got.Y != 0 || enc.got.Width != 360 || enc.got.Height != 360 {
		t.Errorf("unexpected crop %+v", enc.got)
	}
	if res.Size != 2048 || res.HumanSize != "2.0 kB" {
		t.Errorf("unexpected size %d (%s)", res.Size, res.HumanSize)
	}
	if !last.Done {
		t.Error("progress must reach the caller")
	}
}

func TestExportRejectsInvalidWithoutEncoding(t *testing.T) {
	enc := &fakeEncoder{}
	x := New(zerolog.Nop(), enc)
	req := validRequest(t.TempDir())
	req.Crop.W = 0

	if _, err := x.Export(context.Background(), req, nil); !errors.Is(err, ErrInvalidCrop) {
		t.Fatalf("expected ErrInvalidCrop, got %v", err)
	}
	if enc.input != "" {
		t.Error("encoder must not run for an invalid request")
	}
}

func TestExportFailureRemovesPartialOutput(t *testing.T) {
	runErr := &ffmpeg.RunError{
		Err:    errors.New("exit status 1"),
		Stderr: []string{"Error while decoding stream #0:0", "Conversion failed!"},
	}
	enc := &fakeEncoder{write: []byte("partial"), failErr: runErr}
	x := New(zerolog.Nop(), enc)
	req := validRequest(t.TempDir())

	_, err := x.Export(context.Background(), req, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsValidation(err) {
		t.Error("encoder failures are not validation errors")
	}
	if _, statErr := os.Stat(req.Output); !os.IsNotExist(statErr) {
		t.Errorf("partial output must be removed, stat: %v", statErr)
	}
	if got := strings.Join(StderrPreview(err), "\n"); !strings.Contains(got, "Conversion failed!") {
		t.Errorf("expected stderr preview, got %q", got)
	}
}

func TestStartDeliversOneOutcome(t *testing.T) {
	enc := &fakeEncoder{write: []byte("ok")}
	x := New(zerolog.Nop(), enc)

	ch := x.Start(context.Background(), validRequest(t.TempDir()), nil)
	select {
	case o := <-ch:
		if o.Err != nil || o.Result == nil {
			t.Fatalf("unexpected outcome %+v", o)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("export did not finish")
	}
	if _, ok := <-ch; ok {
		t.Error("channel must be closed after the outcome")
	}
}
