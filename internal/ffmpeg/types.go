package ffmpeg

import (
	"io"
	"time"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Bitrate    int64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	OutTime    time.Duration
	Speed      string
	Percentage float64
	Done       bool
}

// ProgressFunc is called once per ffmpeg progress block.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string
	// Duration is the expected output length; it turns out_time into a
	// percentage.
	Duration        time.Duration
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
	// Stdout receives the raw output stream, e.g. piped image data. When nil,
	// stdout is scanned line by line into LogHandler.
	Stdout io.Writer
}

// Options configures an Executor.
type Options struct {
	// FFmpegPath and FFprobePath override the PATH lookup.
	FFmpegPath  string
	FFprobePath string
	Threads     int
	// PreviewMaxWidth bounds decoded preview frames; 0 keeps native size.
	PreviewMaxWidth int
}

// Default encoding settings
const (
	DefaultAudioCodec  = "copy"
	stderrPreviewLines = 20
)

// CropTrimOptions configures a cropped subclip export.
type CropTrimOptions struct {
	Output string
	Start  time.Duration
	// Duration of the subclip; must be positive.
	Duration time.Duration
	X, Y     int
	Width    int
	Height   int
	// ScaleWidth and ScaleHeight optionally resize the cropped picture; a
	// zero side follows the aspect.
	ScaleWidth  int
	ScaleHeight int
	// AudioCodec defaults to stream copy.
	AudioCodec   string
	ProgressFunc ProgressFunc
}
