package gui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/ezcrop/internal/config"
	"github.com/kikiluvv/ezcrop/internal/crop"
	"github.com/kikiluvv/ezcrop/internal/export"
	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/internal/playback"
	"github.com/kikiluvv/ezcrop/internal/prefs"
	"github.com/kikiluvv/ezcrop/pkg/util"
)

var errNoFileName = errors.New("please enter a file name")

// AppID keys the persisted preferences.
const AppID = "io.github.kikiluvv.ezcrop"

// Options wires the editor to its collaborators.
type Options struct {
	Logger   zerolog.Logger
	Config   *config.Config
	Executor *ffmpeg.Executor
	// Video is loaded on start when set.
	Video string
}

type editor struct {
	ctx    context.Context
	logger zerolog.Logger
	cfg    *config.Config

	win      fyne.Window
	probe    *ffmpeg.Executor
	exporter *export.Exporter
	frames   *frameLoader
	folders  *prefs.Folders
	player   *playback.Controller
	ticker   *playback.Ticker

	videoPath    string
	video        *ffmpeg.VideoInfo
	exportCancel context.CancelFunc
	syncing      bool

	image      *canvas.Image
	view       *cropView
	slider     *widget.Slider
	playBtn    *widget.Button
	exportBtn  *widget.Button
	fields     [4]*fieldEntry
	preset     *widget.Select
	videoLabel *widget.Label
	cropLabel  *widget.Label
	rangeLabel *widget.Label
	progress   *widget.ProgressBar
}

// Run opens the editor window and blocks until it is closed.
func Run(ctx context.Context, opts Options) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := app.NewWithID(AppID)
	w := a.NewWindow("EZ Crop")
	w.Resize(fyne.NewSize(opts.Config.Window.Width, opts.Config.Window.Height))

	e := &editor{
		ctx:      ctx,
		logger:   opts.Logger.With().Str("component", "gui").Logger(),
		cfg:      opts.Config,
		win:      w,
		probe:    opts.Executor,
		exporter: export.New(opts.Logger, opts.Executor),
		folders:  prefs.NewFolders(a.Preferences()),
		player:   playback.NewController(),
	}
	e.frames = newFrameLoader(ctx, opts.Executor, func(r frameRequest, img image.Image, err error) {
		fyne.Do(func() { e.showFrame(r, img, err) })
	})

	w.SetContent(e.build())
	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) == 0 {
			return
		}
		path := uris[0].Path()
		if util.HasVideoExtension(path) && util.FileExists(path) {
			e.loadVideo(path)
		}
	})
	w.SetOnClosed(func() {
		e.stopPlayback()
		if e.exportCancel != nil {
			e.exportCancel()
		}
		cancel()
	})

	if opts.Video != "" {
		e.loadVideo(opts.Video)
	}

	w.ShowAndRun()
}

func (e *editor) build() fyne.CanvasObject {
	e.image = canvas.NewImageFromImage(nil)
	e.image.FillMode = canvas.ImageFillContain
	e.image.SetMinSize(fyne.NewSize(320, 180))

	e.view = newCropView(e.cfg.Metrics(), e.cropChanged)

	e.slider = widget.NewSlider(0, 0)
	e.slider.Step = 1
	e.slider.OnChanged = e.sliderMoved

	e.playBtn = widget.NewButton("Play", e.togglePlay)
	startBtn := widget.NewButton("Set Start", e.markStart)
	endBtn := widget.NewButton("Set End", e.markEnd)
	loadBtn := widget.NewButton("Load Video", e.openDialog)
	e.exportBtn = widget.NewButton("Export Crop", e.exportOrCancel)

	e.videoLabel = widget.NewLabel("Video: 0 x 0")
	e.cropLabel = widget.NewLabel("Crop: 0 x 0")
	e.rangeLabel = widget.NewLabel("")

	for i := range e.fields {
		e.fields[i] = newFieldEntry(e.applyFields)
	}

	e.preset = widget.NewSelect(crop.PresetNames(), func(name string) {
		if a, ok := crop.LookupPreset(name); ok {
			e.view.SetAspect(a)
		}
	})
	e.preset.SetSelected(e.cfg.Editor.DefaultPreset)

	e.progress = widget.NewProgressBar()
	e.progress.Hide()

	background := canvas.NewRectangle(color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff})
	videoArea := container.NewStack(background, e.image, e.view)

	controls := container.NewHBox(e.playBtn, startBtn, endBtn, loadBtn, e.exportBtn, layout.NewSpacer(), e.rangeLabel)
	fields := container.NewHBox(
		widget.NewLabel("X:"), e.fields[0],
		widget.NewLabel("Y:"), e.fields[1],
		widget.NewLabel("W:"), e.fields[2],
		widget.NewLabel("H:"), e.fields[3],
		widget.NewLabel("Preset:"), e.preset,
		e.videoLabel, e.cropLabel,
	)

	bottom := container.NewVBox(e.slider, controls, fields, e.progress)
	return container.NewBorder(nil, bottom, nil, nil, videoArea)
}

func (e *editor) openDialog() {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, e.win)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		e.loadVideo(path)
	}, e.win)
	fd.SetFilter(storage.NewExtensionFileFilter(util.VideoExtensions))
	if dir, err := storage.ListerForURI(storage.NewFileURI(e.folders.OpenFolder())); err == nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

// loadVideo probes off the UI thread and applies the result on it.
func (e *editor) loadVideo(path string) {
	e.stopPlayback()
	e.logger.Info().Str("path", path).Msg("loading video")

	go func() {
		info, err := e.probe.ProbeVideo(e.ctx, path)
		fyne.Do(func() {
			if err != nil {
				e.logger.Error().Err(err).Str("path", path).Msg("failed to load video")
				dialog.ShowError(fmt.Errorf("could not open %s: %w", filepath.Base(path), err), e.win)
				return
			}
			if info.FrameCount <= 0 || info.FPS <= 0 {
				dialog.ShowError(fmt.Errorf("%s has no decodable frames", filepath.Base(path)), e.win)
				return
			}
			e.applyVideo(path, info)
		})
	}()
}

func (e *editor) applyVideo(path string, info *ffmpeg.VideoInfo) {
	e.folders.RememberOpen(path)
	e.videoPath = path
	e.video = info
	e.player.Open(info.FrameCount, info.FPS)

	e.view.SetVideo(crop.Size{W: info.Width, H: info.Height})
	e.videoLabel.SetText(fmt.Sprintf("Video: %d x %d", info.Width, info.Height))
	e.win.SetTitle("EZ Crop - " + filepath.Base(path))

	e.slider.Max = float64(info.FrameCount - 1)
	e.slider.Refresh()
	e.seekTo(0)
	e.updateRange()

	e.logger.Info().
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Int("frames", info.FrameCount).
		Msg("video loaded")
}

// seekTo moves the playhead and slider without re-entering sliderMoved.
func (e *editor) seekTo(idx int) {
	if !e.player.Seek(idx) {
		return
	}
	e.syncing = true
	e.slider.SetValue(float64(idx))
	e.syncing = false
	e.requestFrame(idx)
}

func (e *editor) sliderMoved(v float64) {
	if e.syncing {
		return
	}
	idx := int(v)
	if e.player.Seek(idx) {
		e.requestFrame(idx)
	}
}

func (e *editor) requestFrame(idx int) {
	if e.video == nil {
		return
	}
	e.frames.Request(frameRequest{Path: e.videoPath, Index: idx, FPS: e.video.FPS})
}

func (e *editor) showFrame(r frameRequest, img image.Image, err error) {
	if r.Path != e.videoPath {
		return
	}
	if err != nil {
		e.logger.Warn().Err(err).Int("frame", r.Index).Msg("frame decode failed")
		return
	}
	e.image.Image = img
	e.image.Refresh()
}

func (e *editor) togglePlay() {
	if !e.player.Toggle() {
		e.stopPlayback()
		return
	}
	e.playBtn.SetText("Pause")
	e.ticker = playback.StartTicker(e.ctx, e.player.Interval(), func() bool {
		fyne.Do(e.advance)
		return true
	})
}

func (e *editor) advance() {
	if !e.player.Playing() {
		return
	}
	idx, ok := e.player.Advance()
	if !ok {
		e.stopPlayback()
		return
	}
	e.seekTo(idx)
}

func (e *editor) stopPlayback() {
	e.player.Stop()
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	if e.playBtn != nil {
		e.playBtn.SetText("Play")
	}
}

func (e *editor) markStart() {
	if !e.player.Loaded() {
		return
	}
	n := e.player.MarkStart()
	e.updateRange()
	dialog.ShowInformation("Set Start", fmt.Sprintf("Start time set to frame %d", n), e.win)
}

func (e *editor) markEnd() {
	if !e.player.Loaded() {
		return
	}
	n := e.player.MarkEnd()
	e.updateRange()
	dialog.ShowInformation("Set End", fmt.Sprintf("End time set to frame %d", n), e.win)
}

func (e *editor) updateRange() {
	r := e.player.Range()
	start, dur := r.Window(e.player.FPS())
	e.rangeLabel.SetText(fmt.Sprintf("Frames %d-%d (%s, %s)", r.Start, r.End, util.FormatDuration(start), util.FormatSeconds(dur)+"s"))
}

func (e *editor) cropChanged(r crop.Rect) {
	for i, v := range []int{r.X, r.Y, r.W, r.H} {
		e.fields[i].SetText(strconv.Itoa(v))
	}
	e.cropLabel.SetText(fmt.Sprintf("Crop: %d x %d", r.W, r.H))
}

// applyFields routes typed values through the editor; unparseable input is
// ignored and the fields are reset to the current rectangle.
func (e *editor) applyFields() {
	var texts [4]string
	for i, f := range e.fields {
		texts[i] = f.Text
	}
	if r, ok := parseCropFields(texts); ok {
		e.view.SetRect(r)
	}
	e.cropChanged(e.view.Rect())
}

func parseCropFields(texts [4]string) (crop.Rect, bool) {
	var v [4]int
	for i, s := range texts {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return crop.Rect{}, false
		}
		v[i] = n
	}
	return crop.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, true
}

func (e *editor) request(output string) export.Request {
	r := e.player.Range()
	req := export.Request{
		Input:      e.videoPath,
		Output:     output,
		Frame:      e.view.Frame(),
		Crop:       e.view.Rect(),
		Range:      r,
		AudioCodec: e.cfg.FFmpeg.AudioCodec,
	}
	if e.video != nil {
		req.FPS = e.video.FPS
	}
	return req
}

func (e *editor) exportOrCancel() {
	if e.exportCancel != nil {
		e.exportCancel()
		return
	}

	if err := e.request("").Validate(); err != nil {
		e.warn(err)
		return
	}

	def := export.DefaultOutputPath(e.videoPath, e.folders.SaveFolder())
	folder := filepath.Dir(def)
	folderLabel := widget.NewLabel(folder)
	name := widget.NewEntry()
	name.SetText(filepath.Base(def))

	browse := widget.NewButton("Browse...", func() {
		fd := dialog.NewFolderOpen(func(u fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, e.win)
				return
			}
			if u == nil {
				return
			}
			folder = u.Path()
			folderLabel.SetText(folder)
		}, e.win)
		if dir, err := storage.ListerForURI(storage.NewFileURI(folder)); err == nil {
			fd.SetLocation(dir)
		}
		fd.Show()
	})

	// The output is chosen by folder and name so nothing is opened for
	// writing until the path has been checked against the source.
	items := []*widget.FormItem{
		widget.NewFormItem("Folder", container.NewBorder(nil, nil, nil, browse, folderLabel)),
		widget.NewFormItem("File name", name),
	}
	dialog.ShowForm("Export Crop", "Export", "Cancel", items, func(ok bool) {
		if ok {
			e.saveTo(folder, name.Text)
		}
	}, e.win)
}

// saveTo validates the chosen output and starts the export, asking before
// replacing an existing file.
func (e *editor) saveTo(dir, name string) {
	out, err := outputPath(dir, name, filepath.Ext(e.videoPath))
	if err != nil {
		e.warn(err)
		return
	}
	req := e.request(out)
	if err := req.Validate(); err != nil {
		e.warn(err)
		return
	}

	start := func() {
		e.folders.RememberSave(out)
		e.startExport(req)
	}
	if !util.FileExists(out) {
		start()
		return
	}
	dialog.ShowConfirm("Replace file?",
		fmt.Sprintf("%s already exists. Replace it?", filepath.Base(out)),
		func(ok bool) {
			if ok {
				start()
			}
		}, e.win)
}

// outputPath joins the chosen folder and file name, appending the source
// extension when the name does not already end with it.
func outputPath(dir, name, ext string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", errNoFileName
	}
	return export.EnsureExtension(filepath.Join(dir, filepath.Base(name)), ext), nil
}

// startExport runs the encode on a goroutine so the window stays live; the
// export button turns into a cancel button meanwhile.
func (e *editor) startExport(req export.Request) {
	e.stopPlayback()

	ctx, cancel := context.WithCancel(e.ctx)
	e.exportCancel = cancel
	e.exportBtn.SetText("Cancel Export")
	e.progress.SetValue(0)
	e.progress.Show()

	done := e.exporter.Start(ctx, req, func(p *ffmpeg.Progress) {
		pct := p.Percentage
		fyne.Do(func() { e.progress.SetValue(pct / 100) })
	})

	go func() {
		o := <-done
		cancelled := ctx.Err() != nil
		cancel()
		fyne.Do(func() { e.finishExport(o, cancelled) })
	}()
}

func (e *editor) finishExport(o export.Outcome, cancelled bool) {
	e.exportCancel = nil
	e.exportBtn.SetText("Export Crop")
	e.progress.Hide()

	switch {
	case o.Err == nil:
		dialog.ShowInformation("Export Done",
			fmt.Sprintf("Video exported successfully!\n%s (%s)", filepath.Base(o.Result.Output), o.Result.HumanSize), e.win)
	case cancelled:
		e.logger.Info().Msg("export cancelled")
	case export.IsValidation(o.Err):
		e.warn(o.Err)
	default:
		e.logger.Error().Err(o.Err).Msg("export failed")
		msg := strings.Join(export.StderrPreview(o.Err), "\n")
		if msg == "" {
			msg = o.Err.Error()
		}
		dialog.ShowInformation("Export Failed", msg, e.win)
	}
}

// warn shows a validation problem under the matching title.
func (e *editor) warn(err error) {
	title := "Export"
	msg := err.Error()
	switch {
	case errors.Is(err, export.ErrNoVideo):
		title, msg = "No video loaded", "Please load a video first."
	case errors.Is(err, export.ErrInvalidCrop), errors.Is(err, export.ErrCropOutOfBounds):
		title = "Invalid Crop"
	case errors.Is(err, export.ErrInvalidRange):
		title = "Invalid Range"
	case errors.Is(err, export.ErrOutputIsInput), errors.Is(err, errNoFileName):
		title = "Invalid Output"
	}
	dialog.ShowInformation(title, msg, e.win)
}

// fieldEntry is a single-line entry with a fixed width. Its value is
// committed on Enter and when focus leaves it.
type fieldEntry struct {
	widget.Entry
	onCommit func()
}

func newFieldEntry(onCommit func()) *fieldEntry {
	f := &fieldEntry{onCommit: onCommit}
	f.ExtendBaseWidget(f)
	f.OnSubmitted = func(string) { f.commit() }
	return f
}

func (f *fieldEntry) FocusLost() {
	f.Entry.FocusLost()
	f.commit()
}

func (f *fieldEntry) commit() {
	if f.onCommit != nil {
		f.onCommit()
	}
}

func (f *fieldEntry) MinSize() fyne.Size {
	size := f.Entry.MinSize()
	size.Width = 70
	return size
}
