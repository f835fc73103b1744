package gui

import (
	"context"
	"image"
)

// frameDecoder is satisfied by *ffmpeg.Executor.
type frameDecoder interface {
	ExtractFrame(ctx context.Context, input string, index int, fps float64) (image.Image, error)
}

type frameRequest struct {
	Path  string
	Index int
	FPS   float64
}

// frameLoader decodes frames on one background goroutine. Requests that
// arrive while a decode is running collapse into the newest one.
type frameLoader struct {
	ctx     context.Context
	dec     frameDecoder
	reqs    chan frameRequest
	deliver func(frameRequest, image.Image, error)
}

func newFrameLoader(ctx context.Context, dec frameDecoder, deliver func(frameRequest, image.Image, error)) *frameLoader {
	l := &frameLoader{
		ctx:     ctx,
		dec:     dec,
		reqs:    make(chan frameRequest, 1),
		deliver: deliver,
	}
	go l.run()
	return l
}

// Request queues a decode, replacing any request not yet started.
func (l *frameLoader) Request(r frameRequest) {
	for {
		select {
		case l.reqs <- r:
			return
		default:
		}
		select {
		case <-l.reqs:
		default:
		}
	}
}

func (l *frameLoader) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case r := <-l.reqs:
			img, err := l.dec.ExtractFrame(l.ctx, r.Path, r.Index, r.FPS)
			if l.ctx.Err() != nil {
				return
			}
			l.deliver(r, img, err)
		}
	}
}
