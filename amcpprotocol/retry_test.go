package amcpprotocol

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRetryLoopRunsUntilAttemptDeclines(t *testing.T) {
	var calls atomic.Int32
	l := startRetryLoop("test", 5*time.Millisecond, func() bool {
		return calls.Add(1) < 3
	})

	done := make(chan struct{})
	go func() {
		l.wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testWait):
		t.Fatal("loop did not exit after the attempt declined")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if l.running() {
		t.Error("running() = true after exit")
	}
}

func TestRetryLoopFirstAttemptAfterInterval(t *testing.T) {
	var calls atomic.Int32
	l := startRetryLoop("test", time.Hour, func() bool {
		calls.Add(1)
		return true
	})
	defer func() {
		l.stop()
		l.wait()
	}()

	time.Sleep(20 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("attempts before the first interval = %d, want 0", got)
	}
	if !l.running() {
		t.Error("running() = false for a live loop")
	}
}

func TestRetryLoopStop(t *testing.T) {
	l := startRetryLoop("test", time.Millisecond, func() bool { return true })

	l.stop()
	if l.running() {
		t.Error("running() = true right after stop()")
	}
	l.wait()
}

func TestRetryLoopNilSafe(t *testing.T) {
	var l *retryLoop
	if l.running() {
		t.Error("nil loop reports running")
	}
	l.stop()
	l.wait()
}
