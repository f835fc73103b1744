package main

import (
	"strings"
	"testing"
	"time"

	"github.com/kikiluvv/ezcrop/internal/crop"
	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/internal/playback"
)

func TestParseCrop(t *testing.T) {
	r, err := parseCrop("10:20:300:200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (crop.Rect{X: 10, Y: 20, W: 300, H: 200}) {
		t.Errorf("unexpected rect %+v", r)
	}

	for _, bad := range []string{"", "10:20:300", "a:b:c:d", "1:2:3:4:5"} {
		if _, err := parseCrop(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestResolveCrop(t *testing.T) {
	frame := crop.Size{W: 1920, H: 1080}

	r, err := resolveCrop(frame, "", "", crop.DefaultMetrics)
	if err != nil || r != crop.Full(frame) {
		t.Errorf("expected full frame, got %+v (%v)", r, err)
	}

	r, err = resolveCrop(frame, "", "Square (1:1)", crop.DefaultMetrics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (crop.Rect{X: 420, Y: 0, W: 1080, H: 1080}) {
		t.Errorf("expected centred square, got %+v", r)
	}

	// Without a preset an out-of-frame rectangle is left for export
	// validation to report.
	r, err = resolveCrop(frame, "1800:0:400:400", "", crop.DefaultMetrics)
	if err != nil || r.X != 1800 {
		t.Errorf("expected rect passed through, got %+v (%v)", r, err)
	}

	if _, err := resolveCrop(frame, "", "Widescreen", crop.DefaultMetrics); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		start, end int
		want       playback.FrameRange
		wantErr    bool
	}{
		{"defaults to last frame", 300, 0, -1, playback.FrameRange{Start: 0, End: 299}, false},
		{"explicit", 300, 30, 90, playback.FrameRange{Start: 30, End: 90}, false},
		{"start past end of video", 300, 300, -1, playback.FrameRange{}, true},
		{"end past end of video", 300, 0, 300, playback.FrameRange{}, true},
		{"negative start", 300, -1, 10, playback.FrameRange{}, true},
		{"no frames", 0, 0, -1, playback.FrameRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRange(tt.count, tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMarkersFromTimes(t *testing.T) {
	start, end, err := markersFromTimes("", "", 30, 5, -1)
	if err != nil || start != 5 || end != -1 {
		t.Errorf("frame flags must pass through, got %d..%d (%v)", start, end, err)
	}

	start, end, err = markersFromTimes("1.5", "00:03.000", 30, 5, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 45 || end != 90 {
		t.Errorf("expected frames 45..90, got %d..%d", start, end)
	}

	if _, _, err := markersFromTimes("abc", "", 30, 0, -1); err == nil {
		t.Error("expected error for a bad timestamp")
	}
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"", 0, 0, false},
		{"1080x1920", 1080, 1920, false},
		{"720X0", 720, 0, false},
		{"0x0", 0, 0, true},
		{"720", 0, 0, true},
		{"ax10", 0, 0, true},
		{"-2x10", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseScale(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseScale(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseScale(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestRenderInfo(t *testing.T) {
	info := &ffmpeg.VideoInfo{
		FilePath:   "/videos/clip.mp4",
		Duration:   90*time.Second + 500*time.Millisecond,
		Width:      1920,
		Height:     1080,
		FPS:        29.97,
		FrameCount: 2712,
		VideoCodec: "h264",
	}
	out := renderInfo(info, 3_500_000)

	for _, want := range []string{"clip.mp4", "1920x1080", "29.970 fps", "2712", "00:01:30.500", "h264", "none", "3.5 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "bitrate") {
		t.Error("bitrate row should be omitted when unknown")
	}
}
