package effects

import (
	"context"
	"sync"
	"time"

	"AnimBoard/internal/logging"
)

// Loop calls tick at a fixed rate on its own goroutine from Start until Stop.
// The running goroutine is owned through a cancel func; Stop cancels it once
// and waits for it to exit.
type Loop struct {
	interval time.Duration
	tick     func(now time.Time)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a stopped loop running fps ticks per second.
func NewLoop(fps int, tick func(now time.Time)) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{interval: time.Second / time.Duration(fps), tick: tick}
}

// Start launches the loop. Starting a running loop does nothing.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
	logging.Logger().Debug("[BOARD] loop started", "interval", l.interval)
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			l.tick(now)
		}
	}
}

// Stop cancels the loop and waits for the last tick to finish. Stopping a
// stopped loop does nothing.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	logging.Logger().Debug("[BOARD] loop stopped")
}

// Running reports whether the loop has been started and not stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}
