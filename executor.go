//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"context"
	"time"

	"github.com/obinnaokechukwu/gstgo/internal/dispatch"
)

// Future is the pending result of a function run with Submit.
type Future[T any] = dispatch.Future[T]

// Timer is a function scheduled with Schedule or Every.
type Timer = dispatch.Timer

// Invoke runs fn on the dispatch goroutine, after every message listener
// already queued. It does not wait for fn to run.
func Invoke(fn func()) error {
	rt, err := loadedRuntime()
	if err != nil {
		return err
	}
	return rt.queue.Post(fn)
}

// Submit runs fn on the dispatch goroutine and returns its future result.
func Submit[T any](fn func() (T, error)) *Future[T] {
	rt, err := loadedRuntime()
	if err != nil {
		return dispatch.Failed[T](err)
	}
	return dispatch.Submit(rt.queue, fn)
}

// Schedule runs fn once on the dispatch goroutine after delay.
func Schedule(delay time.Duration, fn func()) (*Timer, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return nil, err
	}
	return rt.queue.Schedule(delay, fn)
}

// Every runs fn on the dispatch goroutine every period until the timer is
// canceled or GStreamer is deinitialized.
func Every(period time.Duration, fn func()) (*Timer, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return nil, err
	}
	return rt.queue.Every(period, fn)
}

// Flush waits until everything queued on the dispatch goroutine before the
// call, message deliveries included, has run.
func Flush(ctx context.Context) error {
	rt, err := loadedRuntime()
	if err != nil {
		return err
	}
	return rt.queue.Flush(ctx)
}
