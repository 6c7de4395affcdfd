package registry

import (
	"runtime"
	"sync"
	"testing"
	"time"
	"weak"

	"github.com/obinnaokechukwu/gstgo/internal/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type proxy struct {
	h   native.Handle
	pad [32]byte
}

func TestLoadOrCreateIdentity(t *testing.T) {
	tab := New[proxy]()
	calls := 0
	create := func() *proxy { calls++; return &proxy{h: 10} }

	a, created := tab.LoadOrCreate(10, create)
	require.True(t, created)
	b, created := tab.LoadOrCreate(10, create)
	assert.False(t, created)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Same(t, a, tab.Load(10))
}

func TestNullHandle(t *testing.T) {
	tab := New[proxy]()
	v, created := tab.LoadOrCreate(0, func() *proxy { t.Fatal("create called for null handle"); return nil })
	assert.Nil(t, v)
	assert.False(t, created)
	assert.Nil(t, tab.Load(0))
}

func TestConcurrentResolveYieldsOneProxy(t *testing.T) {
	tab := New[proxy]()
	const goroutines = 64

	results := make([]*proxy, goroutines)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], _ = tab.LoadOrCreate(42, func() *proxy { return &proxy{h: 42} })
		}(i)
	}
	close(start)
	wg.Wait()

	for _, p := range results {
		assert.Same(t, results[0], p)
	}
	assert.Equal(t, 1, tab.Len())
}

func TestDeleteOnlyMatchingEntry(t *testing.T) {
	tab := New[proxy]()
	old, _ := tab.LoadOrCreate(5, func() *proxy { return &proxy{h: 5} })
	oldWeak := weak.Make(old)

	require.True(t, tab.Delete(5, oldWeak))
	assert.Nil(t, tab.Load(5))

	fresh, created := tab.LoadOrCreate(5, func() *proxy { return &proxy{h: 5} })
	require.True(t, created)
	assert.NotSame(t, old, fresh)

	// A late delete for the previous proxy must not evict the new one.
	assert.False(t, tab.Delete(5, oldWeak))
	assert.Same(t, fresh, tab.Load(5))
	runtime.KeepAlive(old)
}

func TestCollectedEntriesAreReaped(t *testing.T) {
	tab := New[proxy]()
	for h := native.Handle(1); h <= 8; h++ {
		tab.LoadOrCreate(h, func() *proxy { return &proxy{h: h} })
	}
	assert.Equal(t, 8, tab.Len())

	require.Eventually(t, func() bool {
		runtime.GC()
		tab.Reap()
		return tab.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStaleEntryIsReplaced(t *testing.T) {
	tab := New[proxy]()
	tab.LoadOrCreate(3, func() *proxy { return &proxy{h: 3} })

	require.Eventually(t, func() bool {
		runtime.GC()
		return tab.Load(3) == nil
	}, 5*time.Second, 10*time.Millisecond)

	v, created := tab.LoadOrCreate(3, func() *proxy { return &proxy{h: 3} })
	assert.True(t, created)
	assert.NotNil(t, v)
}
