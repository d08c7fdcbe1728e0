package store_test

import (
	"fmt"
	"runtime"
	"testing"
	"time"
	"weak"

	"github.com/on-the-ground/memo_ive_go/canon"
	"github.com/on-the-ground/memo_ive_go/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(i int) canon.Key {
	return canon.OfArgs(map[string]any{"i": i})
}

func TestStores_Contract(t *testing.T) {
	factories := map[string]store.Factory[string]{
		"map":          store.NewMap[string],
		"generational": store.NewGenerational[string](store.NewConfig(64)),
		"lru":          store.NewLRU[string](store.NewConfig(64)),
		"ristretto":    store.NewRistretto[string](store.NewConfig(64)),
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := factory()

			_, ok := s.Get(key(1))
			assert.False(t, ok)

			s.Set(key(1), "one")
			s.Set(key(2), "two")
			v, ok := s.Get(key(1))
			require.True(t, ok)
			assert.Equal(t, "one", v)
			assert.Equal(t, 2, s.Len())

			s.Set(key(1), "uno")
			v, _ = s.Get(key(1))
			assert.Equal(t, "uno", v)
			assert.Equal(t, 2, s.Len())

			s.Delete(key(1))
			s.Delete(key(1))
			_, ok = s.Get(key(1))
			assert.False(t, ok)
			assert.Equal(t, 1, s.Len())

			s.Clear()
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestGenerational_DropsOldestGeneration(t *testing.T) {
	s := store.NewGenerational[int](store.NewConfig(4))()

	for i := range 4 {
		s.Set(key(i), i)
	}
	assert.Equal(t, 4, s.Len())

	// rotation drops {0, 1}
	s.Set(key(4), 4)
	_, ok := s.Get(key(0))
	assert.False(t, ok)
	_, ok = s.Get(key(1))
	assert.False(t, ok)
	for _, i := range []int{2, 3, 4} {
		v, ok := s.Get(key(i))
		require.True(t, ok, fmt.Sprint(i))
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 3, s.Len())
}

func TestGenerational_RewriteMovesToHead(t *testing.T) {
	s := store.NewGenerational[int](store.NewConfig(4))()
	s.Set(key(0), 0)
	s.Set(key(1), 1)
	s.Set(key(2), 2) // rotates: head={2}, old={0,1}
	s.Set(key(0), 10)
	assert.Equal(t, 3, s.Len())

	s.Set(key(3), 3) // rotates again: head={3}, old={2,0}
	v, ok := s.Get(key(0))
	require.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = s.Get(key(1))
	assert.False(t, ok)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	s := store.NewLRU[int](store.NewConfig(2))()
	s.Set(key(0), 0)
	s.Set(key(1), 1)
	_, _ = s.Get(key(0))
	s.Set(key(2), 2)

	_, ok := s.Get(key(1))
	assert.False(t, ok)
	_, ok = s.Get(key(0))
	assert.True(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestRistretto_BoundedByMaxEntries(t *testing.T) {
	s := store.NewRistretto[int](store.NewConfig(8))()
	for i := range 32 {
		s.Set(key(i), i)
	}
	assert.LessOrEqual(t, s.Len(), 8)

	for i := range 32 {
		if v, ok := s.Get(key(i)); ok {
			assert.Equal(t, i, v)
		}
	}
}

func TestRistretto_CloseStopsGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	stores := make([]store.Store[int], 16)
	for i := range stores {
		stores[i] = store.NewRistretto[int](store.NewConfig(8))()
		stores[i].Set(key(i), i)
	}
	assert.Greater(t, runtime.NumGoroutine(), before)

	for _, s := range stores {
		store.Close(s)
	}
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClose_IgnoresPlainStores(t *testing.T) {
	s := store.NewMap[int]()
	s.Set(key(1), 1)
	assert.NotPanics(t, func() { store.Close(s) })
}

type node struct {
	id  int
	pad [16]byte
}

func TestStores_KeepIdentityReferentsAlive(t *testing.T) {
	factories := map[string]store.Factory[int]{
		"map":          store.NewMap[int],
		"generational": store.NewGenerational[int](store.NewConfig(64)),
		"lru":          store.NewLRU[int](store.NewConfig(64)),
		"ristretto":    store.NewRistretto[int](store.NewConfig(64)),
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer store.Close(s)

			var wp weak.Pointer[node]
			func() {
				n := &node{id: 1}
				wp = weak.Make(n)
				s.Set(canon.OfArgs(map[string]any{"n": n}), n.id)
			}()
			if s.Len() == 0 {
				t.Skip("entry not admitted")
			}

			for range 3 {
				runtime.GC()
			}
			assert.NotNil(t, wp.Value(), "a stored key pins its referent")

			s.Clear()
			require.Eventually(t, func() bool {
				runtime.GC()
				return wp.Value() == nil
			}, 5*time.Second, 10*time.Millisecond)
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	assert.Equal(t, store.DefaultMaxEntries, store.NewConfig(0).MaxEntries)
	assert.Equal(t, store.DefaultMaxEntries, store.NewConfig(-3).MaxEntries)
	assert.Equal(t, 7, store.NewConfig(7).MaxEntries)
}
