//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

func TestResolveIdentity(t *testing.T) {
	eng := startEngine(t)
	p, err := NewPipeline("p")
	require.NoError(t, err)
	h := native.Handle(p.Native())

	rt := current.Load()
	again := rt.borrow(native.Borrowed{Handle: h}, KindObject)
	assert.Same(t, p.Object, again)
	assert.Equal(t, int32(1), eng.Refs(h), "borrowing an existing proxy takes no reference")

	b1, err := p.Bus()
	require.NoError(t, err)
	bh := native.Handle(b1.Native())
	refsAfterFirst := eng.Refs(bh)

	b2, err := p.Bus()
	require.NoError(t, err)
	assert.Same(t, b1.Object, b2.Object)
	assert.Equal(t, refsAfterFirst, eng.Refs(bh), "surplus reference from the second lookup is dropped")
}

func TestResolveConcurrent(t *testing.T) {
	eng := startEngine(t)
	rt := current.Load()
	h := eng.ElementFactoryMake("fakesink", "sink").Handle

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[*Object]bool{}
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := rt.borrow(native.Borrowed{Handle: h}, KindObject)
			mu.Lock()
			seen[o] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, seen, 1)

	for o := range seen {
		assert.Equal(t, KindElement, o.Kind())
		assert.True(t, o.OwnsReference())
		assert.Equal(t, int32(2), eng.Refs(h))
		o.Dispose()
	}
	assert.Equal(t, int32(1), eng.Refs(h))
	eng.ObjectUnref(h)
}

func TestDisposeReleasesOnce(t *testing.T) {
	eng := startEngine(t)
	el, err := ElementFactoryMake("fakesink", "")
	require.NoError(t, err)
	h := native.Handle(el.Native())
	assert.Equal(t, "fakesink0", el.Name())

	el.Dispose()
	el.Dispose()
	assert.True(t, eng.Freed(h))
	assert.True(t, el.IsDisposed())
	assert.Equal(t, "", el.Name())

	_, err = el.SetState(StatePlaying)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.Panics(t, func() { el.Native() })
	assert.Contains(t, el.String(), "disposed")
}

func TestDisposeThenResolveMakesNewProxy(t *testing.T) {
	eng := startEngine(t)
	p, err := NewPipeline("p")
	require.NoError(t, err)
	sink, err := ElementFactoryMake("fakesink", "sink")
	require.NoError(t, err)
	require.NoError(t, p.Add(sink))

	old := sink.Object
	sh := native.Handle(sink.Native())
	sink.Dispose()
	assert.False(t, eng.Freed(sh), "the bin still holds the element")

	found, err := p.ElementByName("sink")
	require.NoError(t, err)
	assert.NotSame(t, old, found.Object)
	assert.False(t, found.IsDisposed())
}

func TestGarbageCollectedProxyReleasesReference(t *testing.T) {
	eng := startEngine(t)

	h := func() native.Handle {
		el, err := ElementFactoryMake("fakesrc", "")
		require.NoError(t, err)
		return native.Handle(el.Native())
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return eng.Freed(h)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBusKeepsElementAlive(t *testing.T) {
	eng := startEngine(t)

	var ph native.Handle
	bus := func() Bus {
		p, err := NewPipeline("kept")
		require.NoError(t, err)
		ph = native.Handle(p.Native())
		b, err := p.Bus()
		require.NoError(t, err)
		return b
	}()

	for i := 0; i < 5; i++ {
		runtime.GC()
	}
	assert.False(t, eng.Freed(ph), "pipeline must live as long as its bus proxy")
	assert.Equal(t, "kept", current.Load().objects.Load(ph).Name())
	runtime.KeepAlive(bus)
}

func TestReferenceBalance(t *testing.T) {
	eng := startEngine(t)

	p, err := ParseLaunch("fakesrc name=src ! identity ! fakesink name=sink")
	require.NoError(t, err)
	pipe, ok := p.AsPipeline()
	require.True(t, ok)
	src, err := pipe.ElementByName("src")
	require.NoError(t, err)
	bus, err := pipe.Bus()
	require.NoError(t, err)

	src.Dispose()
	bus.Dispose()
	pipe.Dispose()

	assert.Zero(t, eng.LiveObjects())
	assert.Zero(t, eng.LiveMessages())
}

func TestObjectViews(t *testing.T) {
	startEngine(t)
	p, err := NewPipeline("views")
	require.NoError(t, err)

	_, ok := p.Object.AsElement()
	assert.True(t, ok)
	_, ok = p.Object.AsBin()
	assert.True(t, ok)
	_, ok = p.Object.AsBus()
	assert.False(t, ok)

	var nilObj *Object
	assert.Equal(t, native.KindUnknown, nilObj.Kind())
	assert.True(t, nilObj.IsDisposed())
	assert.Equal(t, "<nil>", nilObj.String())

	var zero Element
	_, err = zero.SetState(StatePlaying)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}
