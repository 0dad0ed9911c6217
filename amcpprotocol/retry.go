package amcpprotocol

import (
	"context"
	"time"
)

// retryLoop re-runs an attempt at a fixed interval until the attempt
// reports that retrying is no longer wanted or the loop is stopped.
//
// The first attempt runs one interval after the loop starts.
type retryLoop struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// startRetryLoop starts a loop that calls attempt every interval. attempt
// returns false to end the loop.
func startRetryLoop(name string, interval time.Duration, attempt func() bool) *retryLoop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &retryLoop{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !attempt() {
					return
				}
			}
		}
	}()

	return l
}

// running reports whether the loop is alive and has not been stopped.
func (l *retryLoop) running() bool {
	if l == nil || l.ctx.Err() != nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// stop cancels the loop without waiting for it to exit. Safe on nil.
func (l *retryLoop) stop() {
	if l == nil {
		return
	}
	l.cancel()
}

// wait blocks until the loop goroutine has exited. Safe on nil.
func (l *retryLoop) wait() {
	if l == nil {
		return
	}
	<-l.done
}
