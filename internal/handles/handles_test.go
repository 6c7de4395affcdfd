package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	type callback struct {
		Name string
	}

	var tbl Table[*callback]
	cb := &callback{Name: "bus"}
	id := tbl.Register(cb)
	require.NotZero(t, id)

	got, ok := tbl.Lookup(id)
	require.True(t, ok)
	assert.Same(t, cb, got)
}

func TestUnregister(t *testing.T) {
	var tbl Table[string]
	id := tbl.Register("watch")

	v, ok := tbl.Unregister(id)
	assert.True(t, ok)
	assert.Equal(t, "watch", v)

	_, ok = tbl.Lookup(id)
	assert.False(t, ok)

	_, ok = tbl.Unregister(id)
	assert.False(t, ok, "second unregister finds nothing")
	assert.Zero(t, tbl.Len())
}

func TestLookupUnknown(t *testing.T) {
	var tbl Table[int]
	_, ok := tbl.Lookup(0)
	assert.False(t, ok)
	_, ok = tbl.Lookup(999999)
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	const (
		goroutines = 64
		ops        = 100
	)
	var (
		tbl Table[[2]int]
		wg  sync.WaitGroup
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				id := tbl.Register([2]int{g, j})
				v, ok := tbl.Lookup(id)
				if !ok || v != [2]int{g, j} {
					t.Errorf("lookup %d: got %v %v", id, v, ok)
				}
				tbl.Unregister(id)
			}
		}(i)
	}
	wg.Wait()
	assert.Zero(t, tbl.Len())
}

func TestIDsAreUnique(t *testing.T) {
	var tbl Table[int]
	seen := make(map[uintptr]bool)
	for i := 0; i < 1000; i++ {
		id := tbl.Register(i)
		require.False(t, seen[id], "id %d returned twice", id)
		seen[id] = true
		if i%2 == 0 {
			tbl.Unregister(id)
		}
	}
	assert.Equal(t, 500, tbl.Len())
}
