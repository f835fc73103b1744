package playback

import (
	"context"
	"time"
)

// Ticker calls a function at a fixed interval on its own goroutine.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartTicker calls tick every interval until ctx is cancelled, Stop is
// called, or tick returns false. A non-positive interval returns a ticker
// that has already finished.
func StartTicker(ctx context.Context, interval time.Duration, tick func() bool) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	if interval <= 0 {
		cancel()
		close(t.done)
		return t
	}

	go func() {
		defer close(t.done)
		defer cancel()

		tk := time.NewTicker(interval)
		defer tk.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if !tick() {
					return
				}
			}
		}
	}()

	return t
}

// Stop cancels the ticker without waiting for it; the host may call it from
// inside tick.
func (t *Ticker) Stop() { t.cancel() }

// Done is closed once the ticker goroutine has exited.
func (t *Ticker) Done() <-chan struct{} { return t.done }
