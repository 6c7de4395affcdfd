// Package dispatch runs callbacks one at a time, in submission order, on a
// single dedicated goroutine.
//
// Native streaming threads hand bus messages to the queue and return
// immediately; the worker goroutine is the only place listeners run, so they
// never race with each other and always observe messages in post order.
package dispatch

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"k8s.io/klog"
)

var (
	// ErrAlreadyRunning is returned when Start is called on a running queue.
	ErrAlreadyRunning = errors.New("dispatch: queue already running")

	// ErrNotRunning is returned when posting to a queue that is not running.
	ErrNotRunning = errors.New("dispatch: queue not running")
)

// PanicHandler is called on the worker goroutine when a task panics.
type PanicHandler func(name string, recovered any, stack []byte)

func defaultPanicHandler(name string, recovered any, stack []byte) {
	klog.Errorf("%s: task panicked: %v\n%s", name, recovered, stack)
}

// Queue is an unbounded FIFO task queue drained by one goroutine.
type Queue struct {
	name         string
	panicHandler PanicHandler

	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	running bool
	closing bool
	done    chan struct{}

	posted   atomic.Uint64
	executed atomic.Uint64
	panicked atomic.Uint64
}

// Option configures a Queue.
type Option func(*Queue)

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(q *Queue) {
		if name != "" {
			q.name = name
		}
	}
}

// WithPanicHandler replaces the default handler, which logs through klog.
func WithPanicHandler(h PanicHandler) Option {
	return func(q *Queue) {
		if h != nil {
			q.panicHandler = h
		}
	}
}

// NewQueue creates a stopped queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		name:         "dispatch",
		panicHandler: defaultPanicHandler,
	}
	q.cond = sync.NewCond(&q.mu)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker goroutine. A stopped queue may be started again.
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return ErrAlreadyRunning
	}
	q.running = true
	q.closing = false
	q.done = make(chan struct{})
	go q.worker(q.done)
	klog.V(2).Infof("%s: worker started", q.name)
	return nil
}

// Stop refuses new tasks, lets the worker finish everything already queued,
// and waits for it to exit or for ctx to end.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running || q.closing {
		q.mu.Unlock()
		return ErrNotRunning
	}
	q.closing = true
	done := q.done
	q.cond.Signal()
	q.mu.Unlock()

	select {
	case <-done:
		klog.V(2).Infof("%s: worker stopped", q.name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stopped returns a channel that is closed once the worker has exited. For a
// queue that was never started it is already closed.
func (q *Queue) Stopped() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return q.done
}

// Running reports whether the queue accepts tasks.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running && !q.closing
}

// Post appends fn to the queue. It never blocks on the worker.
func (q *Queue) Post(fn func()) error {
	q.mu.Lock()
	if !q.running || q.closing {
		q.mu.Unlock()
		return ErrNotRunning
	}
	q.tasks = append(q.tasks, fn)
	q.posted.Add(1)
	q.cond.Signal()
	q.mu.Unlock()
	return nil
}

// Flush waits until every task posted before the call has run. It must not
// be called from a task on the same queue.
func (q *Queue) Flush(ctx context.Context) error {
	barrier := make(chan struct{})
	if err := q.Post(func() { close(barrier) }); err != nil {
		return err
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker(done chan struct{}) {
	defer close(done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closing {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.running = false
			q.closing = false
			q.tasks = nil
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.run(task)
	}
}

func (q *Queue) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.panicked.Add(1)
			q.panicHandler(q.name, r, debug.Stack())
		}
		q.executed.Add(1)
	}()
	task()
}

// Stats reports queue activity.
type Stats struct {
	Posted   uint64
	Executed uint64
	Panicked uint64
	Pending  int
}

// Stats returns a snapshot of the counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	pending := len(q.tasks)
	q.mu.Unlock()
	return Stats{
		Posted:   q.posted.Load(),
		Executed: q.executed.Load(),
		Panicked: q.panicked.Load(),
		Pending:  pending,
	}
}
