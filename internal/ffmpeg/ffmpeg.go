package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kikiluvv/ezcrop/pkg/util"
	"github.com/rs/zerolog"
)

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger          zerolog.Logger
	ffmpegPath      string
	ffprobePath     string
	threads         int
	previewMaxWidth int
}

// New creates a new ffmpeg executor
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	ffmpegPath, err := resolveBinary(opts.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}

	ffprobePath, err := resolveBinary(opts.FFprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	return &Executor{
		logger:          logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:      ffmpegPath,
		ffprobePath:     ffprobePath,
		threads:         opts.Threads,
		previewMaxWidth: opts.PreviewMaxWidth,
	}, nil
}

// resolveBinary prefers an explicit path, then a copy bundled in assets/
// beside the executable, then PATH.
func resolveBinary(configured, name string) (string, error) {
	if configured == "" {
		if bundled := bundledBinary(name); util.FileExists(bundled) {
			return bundled, nil
		}
		configured = name
	}
	path, err := exec.LookPath(configured)
	if err != nil {
		return "", fmt.Errorf("%s not found (looked for %q): %w", name, configured, err)
	}
	return path, nil
}

func bundledBinary(name string) string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(exePath), "assets", name)
}

// FFmpegPath returns the resolved ffmpeg binary.
func (e *Executor) FFmpegPath() string { return e.ffmpegPath }

// RunError is returned when ffmpeg exits unsuccessfully. Stderr holds the
// leading diagnostic lines, progress output excluded.
type RunError struct {
	Err    error
	Stderr []string
}

func (e *RunError) Error() string {
	if len(e.Stderr) == 0 {
		return fmt.Sprintf("ffmpeg execution failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg execution failed: %v\n%s", e.Err, strings.Join(e.Stderr, "\n"))
}

func (e *RunError) Unwrap() error { return e.Err }

// baseArgs go before the caller's arguments.
func (e *Executor) baseArgs() []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "info", "-nostats"}
	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}
	return append(args, "-progress", "pipe:2")
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	args := append(e.baseArgs(), opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	var stdout io.ReadCloser
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	} else {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("failed to create stdout pipe: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var (
		wg      sync.WaitGroup
		preview []string
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		preview = streamOutput(stderr, opts.Duration, opts.ProgressHandler, opts.LogHandler)
	}()

	if stdout != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanner := bufio.NewScanner(stdout)
			for scanner.Scan() {
				if opts.LogHandler != nil {
					opts.LogHandler(scanner.Text())
				}
			}
		}()
	}

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RunError{Err: err, Stderr: preview}
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// progressKeys are the keys ffmpeg writes for -progress.
var progressKeys = map[string]bool{
	"frame":       true,
	"fps":         true,
	"bitrate":     true,
	"total_size":  true,
	"out_time_us": true,
	"out_time_ms": true,
	"out_time":    true,
	"dup_frames":  true,
	"drop_frames": true,
	"speed":       true,
	"progress":    true,
}

func parseProgressLine(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return "", "", false
	}
	if !progressKeys[key] && !(strings.HasPrefix(key, "stream_") && strings.HasSuffix(key, "_q")) {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// streamOutput parses ffmpeg's stderr, reporting one Progress per block, and
// returns the first diagnostic lines for error reporting.
func streamOutput(r io.Reader, duration time.Duration, progressHandler ProgressFunc, logHandler func(string)) []string {
	scanner := bufio.NewScanner(r)
	var preview []string
	p := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		if logHandler != nil {
			logHandler(line)
		}

		key, value, ok := parseProgressLine(line)
		if !ok {
			if len(preview) < stderrPreviewLines && strings.TrimSpace(line) != "" {
				preview = append(preview, line)
			}
			continue
		}

		switch key {
		case "frame":
			p.Frame, _ = strconv.Atoi(value)
		case "fps":
			p.FPS, _ = strconv.ParseFloat(value, 64)
		case "bitrate":
			p.Bitrate = value
		case "out_time":
			// N/A and negative placeholders are left at zero.
			if d, err := util.ParseTimestamp(value); err == nil {
				p.OutTime = d
			}
		case "speed":
			p.Speed = value
		case "progress":
			p.Done = value == "end"
			p.Percentage = percentage(p.OutTime, duration, p.Done)
			if progressHandler != nil {
				progressHandler(p)
			}
			p = &Progress{}
		}
	}

	return preview
}

func percentage(out, total time.Duration, done bool) float64 {
	if done {
		return 100
	}
	if total <= 0 || out <= 0 {
		return 0
	}
	return min(100, float64(out)/float64(total)*100)
}
