package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kikiluvv/ezcrop/internal/config"
	"github.com/kikiluvv/ezcrop/internal/crop"
	"github.com/kikiluvv/ezcrop/internal/export"
	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/internal/logging"
	"github.com/kikiluvv/ezcrop/internal/playback"
	"github.com/kikiluvv/ezcrop/pkg/util"
)

var (
	exportCrop   string
	exportPreset string
	exportStart  int
	exportEnd    int
	exportFrom   string
	exportTo     string
	exportOut    string
	exportScale  string
)

var exportCmd = &cobra.Command{
	Use:   "export [video]",
	Short: "Crop and trim a video without opening the editor",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportCrop, "crop", "", "crop rectangle as x:y:width:height in video pixels (default: full frame)")
	f.StringVar(&exportPreset, "preset", "", "snap the crop to an aspect preset (see 'ezcrop presets')")
	f.IntVar(&exportStart, "start", 0, "first frame to keep")
	f.IntVar(&exportEnd, "end", -1, "frame to stop at (default: last frame)")
	f.StringVar(&exportFrom, "from", "", "start timestamp ([HH:]MM:SS.mmm); overrides --start")
	f.StringVar(&exportTo, "to", "", "end timestamp ([HH:]MM:SS.mmm); overrides --end")
	f.StringVarP(&exportOut, "out", "o", "", "output file (default: <name>-cropped.<ext> beside the input)")
	f.StringVar(&exportScale, "scale", "", "scale the cropped output to WIDTHxHEIGHT; 0 keeps the aspect")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.FromContext(cmd.Context())
	logger := logging.WithComponent("export")

	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}

	input := args[0]
	info, err := exec.ProbeVideo(cmd.Context(), input)
	if err != nil {
		return err
	}
	frame := crop.Size{W: info.Width, H: info.Height}

	rect, err := resolveCrop(frame, exportCrop, exportPreset, cfg.Metrics())
	if err != nil {
		return err
	}
	start, end, err := markersFromTimes(exportFrom, exportTo, info.FPS, exportStart, exportEnd)
	if err != nil {
		return err
	}
	rng, err := resolveRange(info.FrameCount, start, end)
	if err != nil {
		return err
	}
	sw, sh, err := parseScale(exportScale)
	if err != nil {
		return err
	}

	output := exportOut
	if output == "" {
		output = export.DefaultOutputPath(input, "")
	} else {
		output = export.EnsureExtension(output, filepath.Ext(input))
	}

	req := export.Request{
		Input:       input,
		Output:      output,
		Frame:       frame,
		Crop:        rect,
		Range:       rng,
		FPS:         info.FPS,
		AudioCodec:  cfg.FFmpeg.AudioCodec,
		ScaleWidth:  sw,
		ScaleHeight: sh,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rep := newProgressReporter(cmd.ErrOrStderr(), logger)
	res, err := export.New(logger, exec).Export(ctx, req, rep.Update)
	rep.Finish()
	if err != nil {
		for _, line := range export.StderrPreview(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Faint.Render(line))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s in %s)\n",
		styles.Success.Render("exported"), res.Output, res.HumanSize, res.Elapsed.Round(10*time.Millisecond))
	return nil
}

// parseCrop reads x:y:width:height.
func parseCrop(s string) (crop.Rect, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return crop.Rect{}, fmt.Errorf("invalid crop %q: want x:y:width:height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return crop.Rect{}, fmt.Errorf("invalid crop %q: %w", s, err)
		}
		v[i] = n
	}
	return crop.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

// resolveCrop turns the flags into a rectangle. A preset runs the rectangle
// through the editor so it snaps exactly as in the GUI; without one the
// rectangle is passed through and checked at export.
func resolveCrop(frame crop.Size, rect, preset string, m crop.Metrics) (crop.Rect, error) {
	r := crop.Full(frame)
	if rect != "" {
		var err error
		if r, err = parseCrop(rect); err != nil {
			return crop.Rect{}, err
		}
	}
	if preset == "" {
		return r, nil
	}

	aspect, ok := crop.LookupPreset(preset)
	if !ok {
		return crop.Rect{}, fmt.Errorf("unknown preset %q", preset)
	}
	s := crop.New(frame, crop.Viewport{}, m)
	s, _ = crop.Update(s, crop.RectEvent{Rect: r})
	s, _ = crop.Update(s, crop.AspectEvent{Aspect: aspect})
	return s.Rect(), nil
}

// resolveRange checks frame markers against the video. A negative end
// selects the last frame.
func resolveRange(frameCount, start, end int) (playback.FrameRange, error) {
	if frameCount <= 0 {
		return playback.FrameRange{}, fmt.Errorf("video has no frames")
	}
	if end < 0 {
		end = frameCount - 1
	}
	if start < 0 || start >= frameCount {
		return playback.FrameRange{}, fmt.Errorf("start frame %d outside 0..%d", start, frameCount-1)
	}
	if end >= frameCount {
		return playback.FrameRange{}, fmt.Errorf("end frame %d outside 0..%d", end, frameCount-1)
	}
	return playback.FrameRange{Start: start, End: end}, nil
}

// markersFromTimes replaces the frame markers with the frames at the given
// timestamps, when set.
func markersFromTimes(from, to string, fps float64, start, end int) (int, int, error) {
	if from != "" {
		d, err := util.ParseTimestamp(from)
		if err != nil {
			return 0, 0, fmt.Errorf("--from: %w", err)
		}
		start = util.DurationToFrames(d, fps)
	}
	if to != "" {
		d, err := util.ParseTimestamp(to)
		if err != nil {
			return 0, 0, fmt.Errorf("--to: %w", err)
		}
		end = util.DurationToFrames(d, fps)
	}
	return start, end, nil
}

// parseScale reads WIDTHxHEIGHT. An empty string disables scaling.
func parseScale(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid scale %q: want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scale width %q", ws)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scale height %q", hs)
	}
	if w < 0 || h < 0 || (w == 0 && h == 0) {
		return 0, 0, fmt.Errorf("invalid scale %q", s)
	}
	return w, h, nil
}

// progressReporter draws a bar on terminals and logs every 10% otherwise.
type progressReporter struct {
	w      io.Writer
	logger zerolog.Logger
	bar    *progress.Model
	drawn  bool
	step   int
}

func newProgressReporter(w io.Writer, logger zerolog.Logger) *progressReporter {
	r := &progressReporter{w: w, logger: logger, step: -1}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
		r.bar = &bar
	}
	return r
}

func (r *progressReporter) Update(p *ffmpeg.Progress) {
	if r.bar != nil {
		fmt.Fprintf(r.w, "\r%s %5.1f%%", r.bar.ViewAs(p.Percentage/100), p.Percentage)
		r.drawn = true
		return
	}
	if step := int(p.Percentage) / 10; step > r.step {
		r.step = step
		r.logger.Info().
			Float64("percent", p.Percentage).
			Str("speed", p.Speed).
			Msg("encoding")
	}
}

func (r *progressReporter) Finish() {
	if r.drawn {
		fmt.Fprintln(r.w)
	}
}
