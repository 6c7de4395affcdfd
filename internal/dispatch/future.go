package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Future is the pending result of a task submitted with Submit.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the task finished or ctx ended.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

func (f *Future[T]) complete(v T, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Submit runs fn on the queue and returns its future result. A panic in fn is
// reported through the future as an error as well as to the panic handler.
func Submit[T any](q *Queue, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	err := q.Post(func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				f.complete(v, fmt.Errorf("dispatch: task panicked: %v", r))
				panic(r)
			}
			f.complete(v, err)
		}()
		v, err = fn()
	})
	if err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}

// Timer is a scheduled task. Cancel stops future runs; a run already posted
// to the queue still executes.
type Timer struct {
	mu       sync.Mutex
	t        *time.Timer
	canceled bool
}

// Cancel stops the timer. It reports whether a pending run was prevented.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return false
	}
	t.canceled = true
	return t.t.Stop()
}

// Canceled reports whether Cancel has been called.
func (t *Timer) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// Schedule runs fn on the queue once, after delay.
func (q *Queue) Schedule(delay time.Duration, fn func()) (*Timer, error) {
	if !q.Running() {
		return nil, ErrNotRunning
	}
	tm := &Timer{}
	tm.mu.Lock()
	tm.t = time.AfterFunc(delay, func() {
		if tm.Canceled() {
			return
		}
		_ = q.Post(fn)
	})
	tm.mu.Unlock()
	return tm, nil
}

// Every runs fn on the queue repeatedly, waiting period between the end of
// one run and the start of the next, until the timer is canceled or the
// queue stops.
func (q *Queue) Every(period time.Duration, fn func()) (*Timer, error) {
	if period <= 0 {
		return nil, fmt.Errorf("dispatch: non-positive period %v", period)
	}
	if !q.Running() {
		return nil, ErrNotRunning
	}
	tm := &Timer{}
	var tick func()
	tick = func() {
		if tm.Canceled() {
			return
		}
		_ = q.Post(func() {
			defer func() {
				tm.mu.Lock()
				if !tm.canceled {
					tm.t.Reset(period)
				}
				tm.mu.Unlock()
			}()
			if !tm.Canceled() {
				fn()
			}
		})
	}
	tm.mu.Lock()
	tm.t = time.AfterFunc(period, tick)
	tm.mu.Unlock()
	return tm, nil
}

// Failed returns a future that is already complete with err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var zero T
	f.complete(zero, err)
	return f
}
