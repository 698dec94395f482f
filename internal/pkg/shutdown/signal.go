// Package shutdown provides the cooperative stop signal shared by every
// reconciliation loop.
package shutdown

import (
	"context"
	"sync"
	"time"
)

// Signal is a one-way RUNNING -> STOPPING flag with an interruptible wait.
// A single instance is shared by all loops and by the OS signal handler.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns a signal in the RUNNING state.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// RequestStop moves the signal to STOPPING and releases every waiter.
// Calling it more than once has no further effect.
func (s *Signal) RequestStop() {
	s.once.Do(func() {
		close(s.done)
	})
}

// ShouldContinue reports whether stop has not been requested yet.
func (s *Signal) ShouldContinue() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// WaitOrStop blocks for d or until stop is requested, whichever comes first.
// It returns true when woken by stop.
func (s *Signal) WaitOrStop(d time.Duration) bool {
	if d <= 0 {
		return !s.ShouldContinue()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	}
}

// Done returns a channel that is closed once stop is requested.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Context returns a child of parent that is cancelled when stop is requested.
func (s *Signal) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
