package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/pkg/util"
)

type cliStyles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Faint   lipgloss.Style
}

var styles = defaultStyles()

func defaultStyles() cliStyles {
	base := lipgloss.NewStyle()
	return cliStyles{
		Title:   base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Label:   base.Foreground(lipgloss.Color("#A3A3A3")),
		Success: base.Foreground(lipgloss.Color("#22C55E")),
		Faint:   base.Faint(true),
	}
}

func renderInfo(info *ffmpeg.VideoInfo, size int64) string {
	audio := "none"
	if info.HasAudio {
		audio = info.AudioCodec
	}
	rows := [][2]string{
		{"resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"frame rate", fmt.Sprintf("%.3f fps", info.FPS)},
		{"frames", fmt.Sprintf("%d", info.FrameCount)},
		{"duration", util.FormatDuration(info.Duration)},
		{"video", info.VideoCodec},
		{"audio", audio},
		{"size", humanize.Bytes(uint64(size))},
	}
	if info.Bitrate > 0 {
		rows = append(rows, [2]string{"bitrate", humanize.SI(float64(info.Bitrate), "b/s")})
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(filepath.Base(info.FilePath)))
	for _, row := range rows {
		fmt.Fprintf(&b, "\n  %s %s", styles.Label.Render(fmt.Sprintf("%-11s", row[0])), row[1])
	}
	return b.String()
}
