//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/obinnaokechukwu/gstgo/internal/native"
	"github.com/obinnaokechukwu/gstgo/internal/refs"
)

// Element is the view of an Object that is a GstElement. The zero value is
// not usable; its methods return ErrInvalidHandle.
type Element struct{ *Object }

// Bin is the view of an Object that is a GstBin.
type Bin struct{ Element }

// Pipeline is the view of an Object that is a GstPipeline.
type Pipeline struct{ Bin }

func clockTimeout(d time.Duration) uint64 {
	if d < 0 {
		return native.ClockTimeNone
	}
	return uint64(d)
}

// ElementFactoryMake creates an element from the named factory. An empty
// name lets GStreamer pick a unique one.
func ElementFactoryMake(factory, name string) (Element, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return Element{}, err
	}
	h := rt.lib.ElementFactoryMake(factory, name)
	if h.IsNull() {
		return Element{}, fmt.Errorf("%w: %q", ErrNoSuchFactory, factory)
	}
	return Element{rt.adopt(h, KindElement)}, nil
}

// NewPipeline creates an empty pipeline.
func NewPipeline(name string) (Pipeline, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return Pipeline{}, err
	}
	h := rt.lib.PipelineNew(name)
	if h.IsNull() {
		return Pipeline{}, fmt.Errorf("gstgo: creating pipeline %q: %w", name, ErrInvalidHandle)
	}
	p, _ := rt.adopt(h, KindPipeline).AsPipeline()
	return p, nil
}

// NewBin creates an empty bin.
func NewBin(name string) (Bin, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return Bin{}, err
	}
	h := rt.lib.BinNew(name)
	if h.IsNull() {
		return Bin{}, fmt.Errorf("gstgo: creating bin %q: %w", name, ErrInvalidHandle)
	}
	b, _ := rt.adopt(h, KindBin).AsBin()
	return b, nil
}

// ParseLaunch builds a pipeline from a gst-launch style description. The
// result is usually a Pipeline; use AsPipeline to get that view.
func ParseLaunch(description string) (Element, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return Element{}, err
	}
	h, perr := rt.lib.ParseLaunch(description)
	if h.IsNull() {
		if perr == nil {
			perr = ErrInvalidHandle
		}
		return Element{}, fmt.Errorf("%w: %w", ErrParseLaunch, perr)
	}
	if perr != nil {
		// Recoverable errors still produce a pipeline.
		return Element{rt.adopt(h, KindElement)}, fmt.Errorf("%w: %w", ErrParseLaunch, perr)
	}
	return Element{rt.adopt(h, KindElement)}, nil
}

// Link links e to dst. Both must be in the same bin.
func (e Element) Link(dst Element) error {
	src, err := e.handle()
	if err != nil {
		return err
	}
	d, err := dst.handle()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(dst.Object)
	defer runtime.KeepAlive(e.Object)
	if !e.rt.lib.ElementLink(src, d) {
		return fmt.Errorf("%w: %s -> %s", ErrLinkFailed, e.Name(), dst.Name())
	}
	return nil
}

// LinkMany links the elements in order.
func LinkMany(elems ...Element) error {
	for i := 1; i < len(elems); i++ {
		if err := elems[i-1].Link(elems[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetState asks the element to change state.
func (e Element) SetState(state State) (StateChangeReturn, error) {
	h, err := e.handle()
	if err != nil {
		return StateChangeFailure, err
	}
	defer runtime.KeepAlive(e.Object)
	ret := StateChangeReturn(e.rt.lib.ElementSetState(h, int32(state)))
	if ret == StateChangeFailure {
		return ret, fmt.Errorf("%w: %s to %s", ErrStateChangeFailed, e.Name(), state)
	}
	return ret, nil
}

// State returns the current and pending state, waiting up to timeout for an
// asynchronous change to finish. A negative timeout waits forever.
func (e Element) State(timeout time.Duration) (current, pending State, ret StateChangeReturn, err error) {
	h, err := e.handle()
	if err != nil {
		return StateVoidPending, StateVoidPending, StateChangeFailure, err
	}
	defer runtime.KeepAlive(e.Object)
	r, cur, pend := e.rt.lib.ElementGetState(h, clockTimeout(timeout))
	ret = StateChangeReturn(r)
	if ret == StateChangeFailure {
		err = fmt.Errorf("%w: %s", ErrStateChangeFailed, e.Name())
	}
	return State(cur), State(pend), ret, err
}

// Play sets the element to PLAYING.
func (e Element) Play() error {
	_, err := e.SetState(StatePlaying)
	return err
}

// Pause sets the element to PAUSED.
func (e Element) Pause() error {
	_, err := e.SetState(StatePaused)
	return err
}

// Ready sets the element to READY.
func (e Element) Ready() error {
	_, err := e.SetState(StateReady)
	return err
}

// Stop sets the element to NULL, releasing its streaming resources.
func (e Element) Stop() error {
	_, err := e.SetState(StateNull)
	return err
}

// IsPlaying reports whether the element is currently PLAYING.
func (e Element) IsPlaying() bool {
	cur, _, _, err := e.State(0)
	return err == nil && cur == StatePlaying
}

// Bus returns the bus of the pipeline the element belongs to. The bus keeps
// the element alive, so holding only the bus is enough to keep receiving
// messages.
func (e Element) Bus() (Bus, error) {
	h, err := e.handle()
	if err != nil {
		return Bus{}, err
	}
	defer runtime.KeepAlive(e.Object)
	bh := e.rt.lib.ElementBus(h)
	if bh.IsNull() {
		return Bus{}, fmt.Errorf("%w: %s", ErrNoBus, e.Name())
	}
	obj := e.rt.adopt(bh, KindBus)
	bus, ok := obj.AsBus()
	if !ok {
		return Bus{}, fmt.Errorf("%w: %s", ErrNotBus, obj)
	}
	if _, loaded := bus.bus.kept.LoadOrStore(h, struct{}{}); !loaded {
		refs.KeepAlive(bus.Object, e.Object)
	}
	return bus, nil
}

// PostMessage posts m on the element's bus. The message stays usable by the
// caller.
func (e Element) PostMessage(m *Message) (bool, error) {
	h, err := e.handle()
	if err != nil {
		return false, err
	}
	mh, err := m.handle()
	if err != nil {
		return false, err
	}
	defer runtime.KeepAlive(e.Object)
	defer runtime.KeepAlive(m)
	e.rt.lib.MessageRef(mh)
	return e.rt.lib.ElementPostMessage(h, native.Owned{Handle: mh}), nil
}

// QueryPosition returns the current playback position.
func (e Element) QueryPosition() (time.Duration, error) {
	h, err := e.handle()
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(e.Object)
	pos, ok := e.rt.lib.ElementQueryPosition(h, native.FormatTime)
	if !ok {
		return 0, fmt.Errorf("%w: position of %s", ErrQueryFailed, e.Name())
	}
	return time.Duration(pos), nil
}

// QueryDuration returns the stream duration.
func (e Element) QueryDuration() (time.Duration, error) {
	h, err := e.handle()
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(e.Object)
	dur, ok := e.rt.lib.ElementQueryDuration(h, native.FormatTime)
	if !ok {
		return 0, fmt.Errorf("%w: duration of %s", ErrQueryFailed, e.Name())
	}
	return time.Duration(dur), nil
}

// Add adds elements to the bin. The bin takes its own reference to each.
func (b Bin) Add(elems ...Element) error {
	h, err := b.handle()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(b.Object)
	for _, el := range elems {
		eh, err := el.handle()
		if err != nil {
			return err
		}
		ok := b.rt.lib.BinAdd(h, eh)
		runtime.KeepAlive(el.Object)
		if !ok {
			return fmt.Errorf("%w: %s to %s", ErrAddFailed, el.Name(), b.Name())
		}
	}
	return nil
}

// ElementByName returns the child with the given name, searching nested
// bins. The result is the same proxy the child already has, if any.
func (b Bin) ElementByName(name string) (Element, error) {
	h, err := b.handle()
	if err != nil {
		return Element{}, err
	}
	defer runtime.KeepAlive(b.Object)
	ch := b.rt.lib.BinByName(h, name)
	if ch.IsNull() {
		return Element{}, fmt.Errorf("%w: %q in %s", ErrElementNotFound, name, b.Name())
	}
	return Element{b.rt.adopt(ch, KindElement)}, nil
}
