package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestResults stores results from the integration tests for the final summary
type TestResults struct {
	ExecutorPath  string
	ProbeResults  *VideoInfo
	FrameSize     string
	ExportCreated bool
	Errors        []string
}

var globalResults = &TestResults{}

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// generateTestVideo writes a 2s 320x240@30 test pattern with a sine track.
func generateTestVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=30",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=2",
		"-pix_fmt", "yuv420p", "-shortest", "-y", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not generate test video: %v\n%s", err, out)
	}
	return path
}

func newTestExecutor(t *testing.T, opts Options) *Executor {
	t.Helper()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	e, err := New(logger, opts)
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("Executor creation failed: %v", err))
		t.Fatalf("failed to create executor: %v", err)
	}
	globalResults.ExecutorPath = e.ffmpegPath
	return e
}

func TestFilterBuilder(t *testing.T) {
	tests := []struct {
		name string
		fb   *FilterBuilder
		want string
	}{
		{"crop", NewFilterBuilder().Crop(360, 360, 140, 0), "crop=360:360:140:0"},
		{"crop then scale", NewFilterBuilder().Crop(608, 1080, 656, 0).Scale(1080, 0), "crop=608:1080:656:0,scale=1080:-2"},
		{"empty crop skipped", NewFilterBuilder().Crop(0, 100, 0, 0).Scale(720, 0), "scale=720:-2"},
		{"empty scale skipped", NewFilterBuilder().Scale(0, 0), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fb.Build(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCropTrimArgs(t *testing.T) {
	args, err := cropTrimArgs("in.mp4", CropTrimOptions{
		Output:   "out.mp4",
		Start:    1500 * time.Millisecond,
		Duration: 2 * time.Second,
		X:        140,
		Y:        0,
		Width:    360,
		Height:   360,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"-i", "in.mp4",
		"-ss", "1.500",
		"-t", "2.000",
		"-filter:v", "crop=360:360:140:0",
		"-c:a", "copy",
		"out.mp4",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("expected %v, got %v", want, args)
	}
}

func TestCropTrimArgsValidation(t *testing.T) {
	valid := CropTrimOptions{Output: "o.mp4", Duration: time.Second, Width: 32, Height: 32}

	tests := []struct {
		name  string
		input string
		edit  func(*CropTrimOptions)
	}{
		{"no input", "", func(*CropTrimOptions) {}},
		{"no output", "in.mp4", func(o *CropTrimOptions) { o.Output = "" }},
		{"zero duration", "in.mp4", func(o *CropTrimOptions) { o.Duration = 0 }},
		{"zero width", "in.mp4", func(o *CropTrimOptions) { o.Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.edit(&opts)
			if _, err := cropTrimArgs(tt.input, opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBaseArgs(t *testing.T) {
	e := &Executor{threads: 4}
	want := []string{"-y", "-hide_banner", "-loglevel", "info", "-nostats", "-threads", "4", "-progress", "pipe:2"}
	if got := e.baseArgs(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	e.threads = 0
	if got := e.baseArgs(); strings.Contains(strings.Join(got, " "), "-threads") {
		t.Errorf("threads flag must be omitted when unset, got %v", got)
	}
}

func TestStreamOutputProgress(t *testing.T) {
	stderr := strings.Join([]string{
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':",
		"frame=30",
		"fps=29.97",
		"stream_0_0_q=28.0",
		"bitrate= 512.0kbits/s",
		"total_size=65536",
		"out_time_us=1000000",
		"out_time=00:00:01.000000",
		"speed=2.01x",
		"progress=continue",
		"frame=60",
		"out_time=00:00:02.500000",
		"progress=continue",
		"out_time=N/A",
		"progress=end",
	}, "\n")

	var got []Progress
	preview := streamOutput(strings.NewReader(stderr), 2*time.Second, func(p *Progress) {
		got = append(got, *p)
	}, nil)

	if len(got) != 3 {
		t.Fatalf("expected 3 progress blocks, got %d", len(got))
	}
	if got[0].Frame != 30 || got[0].OutTime != time.Second || got[0].Percentage != 50 {
		t.Errorf("unexpected first block %+v", got[0])
	}
	if got[0].Bitrate != "512.0kbits/s" || got[0].Speed != "2.01x" {
		t.Errorf("unexpected rate fields %+v", got[0])
	}
	if got[1].Percentage != 100 {
		t.Errorf("percentage must cap at 100, got %v", got[1].Percentage)
	}
	if !got[2].Done || got[2].Percentage != 100 || got[2].OutTime != 0 {
		t.Errorf("unexpected final block %+v", got[2])
	}
	if len(preview) != 1 || !strings.HasPrefix(preview[0], "Input #0") {
		t.Errorf("preview must hold only diagnostic lines, got %q", preview)
	}
}

func TestStreamOutputPreviewLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "error line %d\n\n", i)
	}

	logged := 0
	preview := streamOutput(strings.NewReader(b.String()), 0, nil, func(string) { logged++ })

	if len(preview) != stderrPreviewLines {
		t.Fatalf("expected %d preview lines, got %d", stderrPreviewLines, len(preview))
	}
	if preview[0] != "error line 0" || preview[19] != "error line 19" {
		t.Errorf("preview must keep the leading lines, got %q..%q", preview[0], preview[19])
	}
	if logged != 100 {
		t.Errorf("every line goes to the log handler, got %d", logged)
	}
}

func TestRunErrorUnwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	var err error = fmt.Errorf("crop export failed: %w", &RunError{Err: inner, Stderr: []string{"No such file or directory"}})

	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatal("expected a RunError in the chain")
	}
	if !errors.Is(err, inner) {
		t.Error("RunError must unwrap to the exit error")
	}
	if !strings.Contains(err.Error(), "No such file or directory") {
		t.Errorf("error text must carry stderr, got %q", err.Error())
	}
}

func TestResolveBinary(t *testing.T) {
	bundled := bundledBinary("ffprobe")
	if filepath.Base(filepath.Dir(bundled)) != "assets" {
		t.Errorf("bundled binary should live in assets/, got %q", bundled)
	}

	if _, err := resolveBinary(filepath.Join(t.TempDir(), "no-such-ffmpeg"), "ffmpeg"); err == nil {
		t.Error("expected error for a missing configured binary")
	}
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
			 "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001", "nb_frames": "300"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "10.010000", "bit_rate": "4000000"}
	}`)

	info, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 || info.FrameCount != 300 {
		t.Errorf("unexpected geometry %+v", info)
	}
	if info.FPS < 29.97 || info.FPS > 29.98 {
		t.Errorf("unexpected fps %v", info.FPS)
	}
	if !info.HasAudio || info.AudioCodec != "aac" || info.Bitrate != 4000000 {
		t.Errorf("unexpected stream info %+v", info)
	}
}

func TestParseProbeFallbacks(t *testing.T) {
	data := []byte(`{
		"streams": [{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "0/0", "avg_frame_rate": "25/1"}],
		"format": {"duration": "4.0"}
	}`)

	info, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.FPS != 25 {
		t.Errorf("expected avg_frame_rate fallback, got %v", info.FPS)
	}
	if info.FrameCount != 100 {
		t.Errorf("expected duration × fps frame count, got %d", info.FrameCount)
	}

	if _, err := parseProbe([]byte(`{"streams": [{"codec_type": "audio"}], "format": {}}`)); err == nil {
		t.Error("audio-only input must be rejected")
	}
}

func TestProbeVideo(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := generateTestVideo(t)
	e := newTestExecutor(t, Options{Threads: 2})

	info, err := e.ProbeVideo(context.Background(), path)
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("ProbeVideo failed: %v", err))
		t.Fatalf("ProbeVideo failed: %v", err)
	}
	globalResults.ProbeResults = info

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", info.Width, info.Height)
	}
	if info.FPS != 30 {
		t.Errorf("expected 30 fps, got %v", info.FPS)
	}
	if info.FrameCount < 59 || info.FrameCount > 61 {
		t.Errorf("expected about 60 frames, got %d", info.FrameCount)
	}
}

func TestProbeVideoInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t, Options{})

	if _, err := e.ProbeVideo(context.Background(), "nonexistent.mp4"); err == nil {
		t.Error("ProbeVideo should fail for non-existent file")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.mp4")
	if err := os.WriteFile(invalid, []byte("not a video"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ProbeVideo(context.Background(), invalid); err == nil {
		t.Error("ProbeVideo should fail for invalid video file")
	}
}

func TestExtractFrame(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := generateTestVideo(t)

	e := newTestExecutor(t, Options{})
	img, err := e.ExtractFrame(context.Background(), path, 15, 30)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	b := img.Bounds()
	globalResults.FrameSize = fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected a 320x240 frame, got %v", b)
	}

	small := newTestExecutor(t, Options{PreviewMaxWidth: 160})
	img, err = small.ExtractFrame(context.Background(), path, 0, 30)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("expected a 160x120 preview, got %v", b)
	}
}

func TestCropTrim(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := generateTestVideo(t)
	e := newTestExecutor(t, Options{Threads: 2})

	out := filepath.Join(t.TempDir(), "out.mp4")
	var last Progress
	err := e.CropTrim(context.Background(), path, CropTrimOptions{
		Output:       out,
		Start:        500 * time.Millisecond,
		Duration:     time.Second,
		X:            40,
		Y:            0,
		Width:        240,
		Height:       240,
		ProgressFunc: func(p *Progress) { last = *p },
	})
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("CropTrim failed: %v", err))
		t.Fatalf("CropTrim failed: %v", err)
	}
	globalResults.ExportCreated = true

	info, err := e.ProbeVideo(context.Background(), out)
	if err != nil {
		t.Fatalf("probe of output failed: %v", err)
	}
	if info.Width != 240 || info.Height != 240 {
		t.Errorf("expected 240x240 output, got %dx%d", info.Width, info.Height)
	}
	if !last.Done {
		t.Errorf("expected a final progress block, got %+v", last)
	}
}

func TestCropTrimFailureCarriesStderr(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t, Options{})

	err := e.CropTrim(context.Background(), "nonexistent.mp4", CropTrimOptions{
		Output:   filepath.Join(t.TempDir(), "out.mp4"),
		Duration: time.Second,
		Width:    32,
		Height:   32,
	})
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if len(runErr.Stderr) == 0 {
		t.Error("expected stderr lines on failure")
	}
}

func TestRunCancelled(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Run(ctx, RunOptions{Args: []string{"-f", "lavfi", "-i", "testsrc", "-f", "null", "-"}})
	if err == nil {
		t.Fatal("expected an error from a cancelled run")
	}
}

// TestMain runs after all tests and prints summary
func TestMain(m *testing.M) {
	code := m.Run()
	printTestSummary()
	os.Exit(code)
}

func printTestSummary() {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("TEST SUMMARY - FFmpeg Layer")
	fmt.Println(strings.Repeat("=", 60))

	if globalResults.ExecutorPath != "" {
		fmt.Printf("  FFmpeg Binary:  %s\n", globalResults.ExecutorPath)
	}
	if p := globalResults.ProbeResults; p != nil {
		fmt.Printf("  Probe:          %dx%d @ %.2f fps, %d frames, %v\n", p.Width, p.Height, p.FPS, p.FrameCount, p.Duration)
	}
	if globalResults.FrameSize != "" {
		fmt.Printf("  Frame Decode:   %s\n", globalResults.FrameSize)
	}
	if globalResults.ExportCreated {
		fmt.Println("  Crop Export:    SUCCESS")
	}
	for _, e := range globalResults.Errors {
		fmt.Printf("  ERROR: %s\n", e)
	}
	fmt.Println(strings.Repeat("=", 60))
}
