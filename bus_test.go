//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

func newPipelineBus(t *testing.T, name string) (Pipeline, Bus) {
	t.Helper()
	p, err := NewPipeline(name)
	require.NoError(t, err)
	bus, err := p.Bus()
	require.NoError(t, err)
	return p, bus
}

func postBuffering(t *testing.T, bus Bus, src *Object, percent int) {
	t.Helper()
	m, err := NewBufferingMessage(src, percent)
	require.NoError(t, err)
	ok, err := bus.Post(m)
	require.NoError(t, err)
	require.True(t, ok)
	m.Dispose()
}

func TestStateChangedScenario(t *testing.T) {
	eng := startEngine(t)
	p, bus := newPipelineBus(t, "scenario")
	require.NoError(t, p.Ready())
	// Without listeners the NULL->READY message stays in the native queue.
	queued, err := bus.Pop()
	require.NoError(t, err)
	require.NotNil(t, queued)
	assert.Equal(t, MessageStateChanged, queued.Type())
	queued.Dispose()

	type change struct {
		src                   *Object
		old, current, pending State
	}
	got := make(chan change, 4)
	_, err = bus.OnStateChanged(func(src *Object, old, current, pending State) {
		got <- change{src, old, current, pending}
	})
	require.NoError(t, err)

	require.NoError(t, p.Play())
	flush(t)

	select {
	case c := <-got:
		assert.Same(t, p.Object, c.src)
		assert.Equal(t, StateReady, c.old)
		assert.Equal(t, StatePlaying, c.current)
		assert.Equal(t, StateVoidPending, c.pending)
	default:
		t.Fatal("no state-changed message delivered")
	}
	assert.Empty(t, got)
	assert.True(t, p.IsPlaying())
	assert.Zero(t, eng.LiveMessages())
}

func TestAnyAndStateChangedListenersScenario(t *testing.T) {
	eng := startEngine(t)
	p, bus := newPipelineBus(t, "combined")
	require.NoError(t, p.Ready())
	queued, err := bus.Pop()
	require.NoError(t, err)
	require.NotNil(t, queued)
	queued.Dispose()

	type call struct {
		listener              string
		old, current, pending State
	}
	var calls []call
	_, err = bus.ConnectSignal("message", func(_ Bus, m *Message) {
		old, cur, pending, err := m.ParseStateChanged()
		assert.NoError(t, err)
		calls = append(calls, call{"any", old, cur, pending})
	})
	require.NoError(t, err)
	_, err = bus.ConnectSignal("message::state-changed", func(_ Bus, m *Message) {
		old, cur, pending, err := m.ParseStateChanged()
		assert.NoError(t, err)
		calls = append(calls, call{"state-changed", old, cur, pending})
	})
	require.NoError(t, err)

	require.NoError(t, p.Play())
	flush(t)

	assert.Equal(t, []call{
		{"any", StateReady, StatePlaying, StateVoidPending},
		{"state-changed", StateReady, StatePlaying, StateVoidPending},
	}, calls)
	assert.Zero(t, eng.LiveMessages())
}

// connectUnreferenced registers a listener on p's bus and lets the bus proxy
// go out of scope.
func connectUnreferenced(t *testing.T, p Pipeline, fired chan<- MessageType) (weak.Pointer[Object], ListenerID) {
	t.Helper()
	bus, err := p.Bus()
	require.NoError(t, err)
	id, err := bus.OnMessage(func(_ Bus, m *Message) { fired <- m.Type() })
	require.NoError(t, err)
	return weak.Make(bus.Object), id
}

func TestListenedBusSurvivesCollection(t *testing.T) {
	eng := startEngine(t)
	p, err := NewPipeline("pinned")
	require.NoError(t, err)

	fired := make(chan MessageType, 4)
	wb, id := connectUnreferenced(t, p, fired)
	for i := 0; i < 5; i++ {
		runtime.GC()
	}
	require.NotNil(t, wb.Value(), "a bus with listeners was collected")
	assert.Equal(t, 1, ReadStats().PinnedBuses)

	eos, err := NewEOSMessage(p.Object)
	require.NoError(t, err)
	ok, err := p.PostMessage(eos)
	require.NoError(t, err)
	require.True(t, ok)
	eos.Dispose()
	flush(t)

	select {
	case kind := <-fired:
		assert.Equal(t, MessageEOS, kind)
	default:
		t.Fatal("listener lost after garbage collection")
	}

	// Without listeners the bus is collectable again.
	bus := Bus{wb.Value()}
	require.True(t, bus.Disconnect(id))
	assert.Zero(t, ReadStats().PinnedBuses)
	bus = Bus{}
	require.Eventually(t, func() bool {
		runtime.GC()
		return wb.Value() == nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, eng.LiveMessages())
	runtime.KeepAlive(p)
}

func TestStaleBusCleanupKeepsNewerWatch(t *testing.T) {
	eng := startEngine(t)
	p, err := NewPipeline("stale")
	require.NoError(t, err)
	old, err := p.Bus()
	require.NoError(t, err)
	var oldCalls atomic.Int32
	_, err = old.OnMessage(func(Bus, *Message) { oldCalls.Add(1) })
	require.NoError(t, err)
	bh := native.Handle(old.Native())
	rt := old.rt
	stale := objectCleanup{rt: rt, ref: old.ref, self: weak.Make(old.Object), watch: old.bus.watch}

	// The old proxy leaves the registry as it would when collected, but its
	// cleanup runs only after a newer proxy has subscribed.
	rt.objects.Delete(bh, weak.Make(old.Object))
	rt.pinned.Delete(bh)
	newer, err := p.Bus()
	require.NoError(t, err)
	require.NotSame(t, old.Object, newer.Object)
	fired := make(chan MessageType, 4)
	_, err = newer.OnMessage(func(_ Bus, m *Message) { fired <- m.Type() })
	require.NoError(t, err)
	installed := eng.Subscription(bh)
	require.NotZero(t, installed)

	collectObject(stale)

	assert.True(t, eng.Subscribed(bh))
	assert.Equal(t, installed, eng.Subscription(bh))
	assert.Equal(t, 1, ReadStats().PinnedBuses)

	eos, err := NewEOSMessage(p.Object)
	require.NoError(t, err)
	ok, err := p.PostMessage(eos)
	require.NoError(t, err)
	require.True(t, ok)
	eos.Dispose()
	flush(t)

	select {
	case kind := <-fired:
		assert.Equal(t, MessageEOS, kind)
	default:
		t.Fatal("newer bus proxy lost its sync handler")
	}
	assert.Zero(t, oldCalls.Load())
	assert.Zero(t, eng.LiveMessages())
}

func TestSyncHandlerWithoutListeners(t *testing.T) {
	eng := startEngine(t)
	p, bus := newPipelineBus(t, "hookonly")
	bh := native.Handle(bus.Native())

	var seen []MessageType
	require.NoError(t, bus.SetSyncHandler(func(_ Bus, m *Message) BusSyncReply {
		seen = append(seen, m.Type())
		if m.Type() == MessageEOS {
			return BusDrop
		}
		return BusPass
	}))
	assert.False(t, bus.WatchActive())
	assert.True(t, eng.Subscribed(bh))

	eos, err := NewEOSMessage(p.Object)
	require.NoError(t, err)
	ok, err := p.PostMessage(eos)
	require.NoError(t, err)
	require.True(t, ok)
	eos.Dispose()
	assert.Equal(t, []MessageType{MessageEOS}, seen)

	got, err := bus.Pop()
	require.NoError(t, err)
	assert.Nil(t, got, "a dropped message is not queued")

	postBuffering(t, bus, p.Object, 30)
	assert.Equal(t, []MessageType{MessageEOS, MessageBuffering}, seen)
	got, err = bus.Pop()
	require.NoError(t, err)
	require.NotNil(t, got, "a passed message stays queued")
	assert.Equal(t, MessageBuffering, got.Type())
	got.Dispose()

	bus.ClearSyncHandler()
	assert.False(t, eng.Subscribed(bh))
	assert.Zero(t, eng.LiveMessages())
}

func TestListenersSeeMessagesInPostOrder(t *testing.T) {
	eng := startEngine(t)
	p, bus := newPipelineBus(t, "order")

	const producers, perProducer = 4, 50
	srcs := make([]Element, producers)
	for i := range srcs {
		el, err := ElementFactoryMake("fakesrc", "")
		require.NoError(t, err)
		require.NoError(t, p.Add(el))
		srcs[i] = el
	}

	var (
		mu   sync.Mutex
		seen = map[*Object][]int{}
	)
	_, err := bus.OnBuffering(func(src *Object, percent int) {
		mu.Lock()
		seen[src] = append(seen[src], percent)
		mu.Unlock()
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, el := range srcs {
		wg.Add(1)
		go func(el Element) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				m, err := NewBufferingMessage(el.Object, i)
				if !assert.NoError(t, err) {
					return
				}
				ok, err := bus.Post(m)
				assert.True(t, ok)
				assert.NoError(t, err)
				m.Dispose()
			}
		}(el)
	}
	wg.Wait()
	flush(t)

	require.Len(t, seen, producers)
	for _, el := range srcs {
		got := seen[el.Object]
		require.Len(t, got, perProducer)
		for i, v := range got {
			assert.Equal(t, i, v, "producer %s out of order", el.Name())
		}
	}
	assert.Zero(t, eng.LiveMessages())
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	startEngine(t)
	_, bus := newPipelineBus(t, "reg")

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		_, err := bus.Connect(MessageAny, func(Bus, *Message) { order = append(order, name) })
		require.NoError(t, err)
	}
	_, err := bus.Connect(MessageEOS, func(Bus, *Message) { order = append(order, "eos-only") })
	require.NoError(t, err)

	postBuffering(t, bus, nil, 10)
	flush(t)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSyncHandlerReplies(t *testing.T) {
	eng := startEngine(t)
	_, bus := newPipelineBus(t, "sync")

	var delivered []MessageType
	_, err := bus.OnMessage(func(_ Bus, m *Message) { delivered = append(delivered, m.Type()) })
	require.NoError(t, err)

	var hookSaw atomic.Int32
	require.NoError(t, bus.SetSyncHandler(func(_ Bus, m *Message) BusSyncReply {
		hookSaw.Add(1)
		switch m.Type() {
		case MessageEOS:
			return BusDrop
		case MessageDurationChanged:
			return BusAsync
		}
		return BusPass
	}))
	assert.True(t, bus.HasSyncHandler())

	eos, err := NewEOSMessage(nil)
	require.NoError(t, err)
	_, err = bus.Post(eos)
	require.NoError(t, err)
	dur, err := NewDurationChangedMessage(nil)
	require.NoError(t, err)
	_, err = bus.Post(dur)
	require.NoError(t, err)
	postBuffering(t, bus, nil, 50)
	flush(t)

	assert.Equal(t, int32(3), hookSaw.Load())
	assert.Equal(t, []MessageType{MessageDurationChanged, MessageBuffering}, delivered)

	eos.Dispose()
	dur.Dispose()
	assert.Zero(t, eng.LiveMessages(), "dropped messages are released too")
}

func TestSyncHandlerReplace(t *testing.T) {
	startEngine(t)
	_, bus := newPipelineBus(t, "replace")

	var count atomic.Int32
	_, err := bus.OnMessage(func(Bus, *Message) { count.Add(1) })
	require.NoError(t, err)

	require.NoError(t, bus.SetSyncHandler(func(Bus, *Message) BusSyncReply { return BusDrop }))
	postBuffering(t, bus, nil, 1)
	require.NoError(t, bus.SetSyncHandler(func(Bus, *Message) BusSyncReply { return BusPass }))
	postBuffering(t, bus, nil, 2)
	bus.ClearSyncHandler()
	postBuffering(t, bus, nil, 3)
	flush(t)

	assert.Equal(t, int32(2), count.Load())
	assert.False(t, bus.HasSyncHandler())
	assert.ErrorIs(t, bus.SetSyncHandler(nil), ErrNilHandler)
}

func TestSyncHandlerPanicPasses(t *testing.T) {
	startEngine(t)
	_, bus := newPipelineBus(t, "hookpanic")

	var count atomic.Int32
	_, err := bus.OnMessage(func(Bus, *Message) { count.Add(1) })
	require.NoError(t, err)
	require.NoError(t, bus.SetSyncHandler(func(Bus, *Message) BusSyncReply { panic("hook") }))

	postBuffering(t, bus, nil, 1)
	flush(t)
	assert.Equal(t, int32(1), count.Load())
}

func TestRemoveDuringDispatch(t *testing.T) {
	startEngine(t)
	_, bus := newPipelineBus(t, "remove")

	var (
		bCalls int
		bID    ListenerID
	)
	_, err := bus.OnMessage(func(b Bus, _ *Message) {
		b.Disconnect(bID)
	})
	require.NoError(t, err)
	bID, err = bus.OnMessage(func(Bus, *Message) { bCalls++ })
	require.NoError(t, err)

	postBuffering(t, bus, nil, 1)
	postBuffering(t, bus, nil, 2)
	flush(t)

	assert.Equal(t, 1, bCalls, "the in-flight message still reaches the removed listener, later ones do not")
	assert.Equal(t, 1, bus.ListenerCount())
}

func TestListenerPanicIsolated(t *testing.T) {
	startEngine(t)
	_, bus := newPipelineBus(t, "panic")

	var got []int
	_, err := bus.OnBuffering(func(*Object, int) { panic("listener") })
	require.NoError(t, err)
	_, err = bus.OnBuffering(func(_ *Object, percent int) { got = append(got, percent) })
	require.NoError(t, err)

	postBuffering(t, bus, nil, 10)
	postBuffering(t, bus, nil, 20)
	flush(t)

	assert.Equal(t, []int{10, 20}, got)
	assert.Equal(t, uint64(0), ReadStats().Dispatch.Panicked, "listener panics never reach the queue")
}

func TestWatchFollowsListeners(t *testing.T) {
	eng := startEngine(t)
	_, bus := newPipelineBus(t, "watch")
	bh := native.Handle(bus.Native())

	assert.False(t, bus.WatchActive())
	a, err := bus.OnMessage(func(Bus, *Message) {})
	require.NoError(t, err)
	b, err := bus.OnEOS(func(*Object) {})
	require.NoError(t, err)
	assert.True(t, bus.WatchActive())
	assert.True(t, eng.Subscribed(bh))

	installed, removed := eng.SubscribeCounts(bh)
	assert.Equal(t, 1, installed)
	assert.Zero(t, removed)

	assert.True(t, bus.Disconnect(a))
	assert.True(t, eng.Subscribed(bh))
	assert.True(t, bus.Disconnect(b))
	assert.False(t, bus.Disconnect(b))
	assert.False(t, bus.WatchActive())
	assert.False(t, eng.Subscribed(bh))

	_, err = bus.OnMessage(func(Bus, *Message) {})
	require.NoError(t, err)
	installed, removed = eng.SubscribeCounts(bh)
	assert.Equal(t, 2, installed)
	assert.Equal(t, 1, removed)
}

func TestDisposedBusSkipsDelivery(t *testing.T) {
	eng := startEngine(t)
	_, bus := newPipelineBus(t, "disposed")

	var calls atomic.Int32
	_, err := bus.OnMessage(func(Bus, *Message) { calls.Add(1) })
	require.NoError(t, err)

	gate := make(chan struct{})
	require.NoError(t, Invoke(func() { <-gate }))
	postBuffering(t, bus, nil, 1)
	bus.Dispose()
	close(gate)
	flush(t)

	assert.Zero(t, calls.Load())
	assert.Zero(t, eng.LiveMessages())

	_, err = bus.OnMessage(func(Bus, *Message) {})
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = bus.Post(nil)
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestFlushingBusRejectsPosts(t *testing.T) {
	eng := startEngine(t)
	_, bus := newPipelineBus(t, "flushing")

	var calls atomic.Int32
	_, err := bus.OnMessage(func(Bus, *Message) { calls.Add(1) })
	require.NoError(t, err)

	require.NoError(t, bus.SetFlushing(true))
	assert.True(t, bus.IsFlushing())

	m, err := NewEOSMessage(nil)
	require.NoError(t, err)
	ok, err := bus.Post(m)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.IsDisposed(), "the caller keeps its message")
	assert.Equal(t, MessageEOS, m.Type())
	m.Dispose()

	require.NoError(t, bus.SetFlushing(false))
	postBuffering(t, bus, nil, 5)
	flush(t)
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, eng.LiveMessages())
}

func TestPopWithoutListeners(t *testing.T) {
	eng := startEngine(t)
	p, bus := newPipelineBus(t, "pop")

	m, err := bus.Pop()
	require.NoError(t, err)
	assert.Nil(t, m)

	eos, err := NewEOSMessage(p.Object)
	require.NoError(t, err)
	ok, err := p.PostMessage(eos)
	require.NoError(t, err)
	require.True(t, ok)
	eos.Dispose()

	got, err := bus.TimedPop(time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, MessageEOS, got.Type())
	assert.Same(t, p.Object, got.Source())
	got.Dispose()

	_, err = bus.OnMessage(func(Bus, *Message) {})
	require.NoError(t, err)
	postBuffering(t, bus, nil, 1)
	got, err = bus.TimedPop(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got, "a bus with listeners does not queue")
	flush(t)
	assert.Zero(t, eng.LiveMessages())
}

func TestConnectSignal(t *testing.T) {
	startEngine(t)
	_, bus := newPipelineBus(t, "signals")

	var kinds []MessageType
	_, err := bus.ConnectSignal("message::Buffering", func(_ Bus, m *Message) { kinds = append(kinds, m.Type()) })
	require.NoError(t, err)
	_, err = bus.ConnectSignal("message", func(_ Bus, m *Message) { kinds = append(kinds, m.Type()) })
	require.NoError(t, err)

	_, err = bus.ConnectSignal("message::no-such-kind", func(Bus, *Message) {})
	assert.ErrorIs(t, err, ErrUnknownSignal)
	_, err = bus.Connect(MessageAny, nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	postBuffering(t, bus, nil, 1)
	flush(t)
	assert.Equal(t, []MessageType{MessageBuffering, MessageBuffering}, kinds)
}

func TestRetainOutlivesDelivery(t *testing.T) {
	eng := startEngine(t)
	_, bus := newPipelineBus(t, "retain")

	kept := make(chan *Message, 1)
	var delivered *Message
	_, err := bus.OnMessage(func(_ Bus, m *Message) {
		delivered = m
		r, err := m.Retain()
		if err == nil {
			kept <- r
		}
	})
	require.NoError(t, err)

	postBuffering(t, bus, nil, 42)
	flush(t)

	assert.True(t, delivered.IsDisposed(), "the delivered envelope is released after dispatch")
	r := <-kept
	percent, err := r.ParseBuffering()
	require.NoError(t, err)
	assert.Equal(t, 42, percent)
	assert.Equal(t, 1, eng.LiveMessages())
	r.Dispose()
	assert.Zero(t, eng.LiveMessages())
}

func TestTypedListeners(t *testing.T) {
	startEngine(t)
	p, bus := newPipelineBus(t, "typed")

	var (
		gotErr  *GError
		gotTags string
		gotDone time.Duration
		eos     bool
	)
	_, err := bus.OnError(func(_ *Object, e *GError) { gotErr = e })
	require.NoError(t, err)
	_, err = bus.OnTag(func(_ *Object, tags string) { gotTags = tags })
	require.NoError(t, err)
	_, err = bus.OnAsyncDone(func(_ *Object, rt time.Duration) { gotDone = rt })
	require.NoError(t, err)
	_, err = bus.OnEOS(func(*Object) { eos = true })
	require.NoError(t, err)

	post := func(m *Message, err error) {
		t.Helper()
		require.NoError(t, err)
		ok, err := p.PostMessage(m)
		require.NoError(t, err)
		require.True(t, ok)
		m.Dispose()
	}
	post(NewErrorMessage(p.Object, &GError{Domain: "gst-resource-error-quark", Code: 3, Message: "not found", Debug: "filesrc.c:42"}))
	post(NewTagMessage(p.Object, "taglist, title=(string)Intro"))
	post(NewAsyncDoneMessage(p.Object, 2*time.Second))
	post(NewEOSMessage(p.Object))
	flush(t)

	require.NotNil(t, gotErr)
	assert.Equal(t, "not found", gotErr.Message)
	assert.Equal(t, int32(3), gotErr.Code)
	assert.Equal(t, "filesrc.c:42", gotErr.Debug)
	assert.Equal(t, "taglist, title=(string)Intro", gotTags)
	assert.Equal(t, 2*time.Second, gotDone)
	assert.True(t, eos)

	_, err = bus.OnError(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}
