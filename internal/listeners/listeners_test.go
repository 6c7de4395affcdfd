package listeners

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kind int

const (
	kindAny kind = iota
	kindA
	kindB
)

type fn func(*[]string)

func TestMatchingOrder(t *testing.T) {
	l := New[kind, string](kindAny, nil)
	l.Add(kindA, "a1")
	l.Add(kindAny, "any")
	l.Add(kindB, "b1")
	l.Add(kindA, "a2")

	var got []string
	for _, e := range l.Matching(kindA) {
		got = append(got, e.Fn)
	}
	assert.Equal(t, []string{"a1", "any", "a2"}, got)

	got = got[:0]
	for _, e := range l.Matching(kindB) {
		got = append(got, e.Fn)
	}
	assert.Equal(t, []string{"any", "b1"}, got)
}

func TestRemoveByIdentity(t *testing.T) {
	l := New[kind, string](kindAny, nil)
	first := l.Add(kindA, "same")
	second := l.Add(kindA, "same")
	require.NotEqual(t, first, second)

	assert.True(t, l.Remove(first))
	assert.False(t, l.Remove(first))
	assert.False(t, l.Remove(999))

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, second, snap[0].ID)
}

func TestRemoveDuringIteration(t *testing.T) {
	l := New[kind, fn](kindAny, nil)
	var ids []ID
	for _, name := range []string{"x", "y", "z"} {
		name := name
		ids = append(ids, l.Add(kindA, func(log *[]string) { *log = append(*log, name) }))
	}

	var log []string
	snap := l.Matching(kindA)
	for i, e := range snap {
		if i == 0 {
			// x removes y and itself; the snapshot still runs y.
			l.Remove(ids[1])
			l.Remove(ids[0])
			l.Add(kindA, func(log *[]string) { *log = append(*log, "late") })
		}
		e.Fn(&log)
	}
	assert.Equal(t, []string{"x", "y", "z"}, log)

	log = nil
	for _, e := range l.Matching(kindA) {
		e.Fn(&log)
	}
	assert.Equal(t, []string{"z", "late"}, log)
}

func TestActivationFiresOncePerTransition(t *testing.T) {
	var events []bool
	l := New[kind, string](kindAny, func(active bool) { events = append(events, active) })

	a := l.Add(kindA, "a")
	b := l.Add(kindB, "b")
	l.Remove(a)
	assert.Equal(t, []bool{true}, events)

	l.Remove(b)
	l.Remove(b)
	assert.Equal(t, []bool{true, false}, events)

	l.Add(kindA, "again")
	assert.Equal(t, 1, l.Clear())
	assert.Equal(t, 0, l.Clear())
	assert.Equal(t, []bool{true, false, true, false}, events)
	assert.False(t, l.Active())
}

func TestConcurrentAddRemoveToggles(t *testing.T) {
	var mu sync.Mutex
	balance := 0
	l := New[kind, int](kindAny, func(active bool) {
		mu.Lock()
		defer mu.Unlock()
		if active {
			balance++
		} else {
			balance--
		}
		if balance < 0 || balance > 1 {
			t.Errorf("activation out of balance: %d", balance)
		}
	})

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				l.Remove(l.Add(kindA, i))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, balance)
}
