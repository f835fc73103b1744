package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d as an HH:MM:SS.mmm timestamp.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// FormatSeconds renders d as fractional seconds with millisecond precision,
// the form ffmpeg's -ss and -t accept.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// ParseTimestamp parses SS.mmm, MM:SS(.mmm) or HH:MM:SS(.mmm).
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if s == "" || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp format: %q", s)
	}

	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp format: %q", s)
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)), nil
}

// ParseFrameRate parses an ffprobe rational frame rate such as "30000/1001".
// A bare number is accepted as well. Unparseable input yields 0.
func ParseFrameRate(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// FramesToDuration converts a frame count at fps into a duration.
func FramesToDuration(frames int, fps float64) time.Duration {
	if fps <= 0 || frames <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(frames) / fps * float64(time.Second)))
}

// DurationToFrames converts a duration into a whole frame count at fps,
// rounding down.
func DurationToFrames(d time.Duration, fps float64) int {
	if fps <= 0 || d <= 0 {
		return 0
	}
	return int(math.Floor(d.Seconds()*fps + 1e-9))
}
