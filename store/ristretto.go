package store

import (
	"sync"

	ristretto "github.com/dgraph-io/ristretto/v2"

	"github.com/on-the-ground/memo_ive_go/canon"
)

var _ Store[any] = (*Ristretto[any])(nil)

var _ Closer = (*Ristretto[any])(nil)

type ristrettoEntry[V any] struct {
	key   canon.Key
	value V
}

// Ristretto is a TinyLFU-admitted store bounded to MaxEntries. Entries are
// indexed by key digest; the full key is kept alongside to reject collisions.
//
// Writes are applied before Set and Delete return. Ristretto may still refuse to
// admit a new entry, in which case the next Get misses.
//
// A Ristretto runs background goroutines until Close.
type Ristretto[V any] struct {
	cache *ristretto.Cache[uint64, ristrettoEntry[V]]

	// ristretto reports evictions from its own goroutine
	mu   sync.Mutex
	live map[uint64]struct{}
}

// NewRistretto returns a Factory for Ristretto stores sized by cfg.
func NewRistretto[V any](cfg Config) Factory[V] {
	cfg = NewConfig(cfg.MaxEntries)
	return func() Store[V] {
		r := &Ristretto[V]{live: make(map[uint64]struct{})}
		cache, err := ristretto.NewCache(&ristretto.Config[uint64, ristrettoEntry[V]]{
			NumCounters:        int64(cfg.MaxEntries) * 10,
			MaxCost:            int64(cfg.MaxEntries),
			BufferItems:        64,
			IgnoreInternalCost: true,
			OnEvict:            r.forget,
			OnReject:           r.forget,
		})
		if err != nil {
			// only returned for non-positive sizes, which NewConfig rules out
			panic(err)
		}
		r.cache = cache
		return r
	}
}

func (r *Ristretto[V]) forget(item *ristretto.Item[ristrettoEntry[V]]) {
	r.mu.Lock()
	delete(r.live, item.Key)
	r.mu.Unlock()
}

func (r *Ristretto[V]) Get(key canon.Key) (V, bool) {
	e, ok := r.cache.Get(key.Digest())
	if !ok || e.key.ID != key.ID {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (r *Ristretto[V]) Set(key canon.Key, value V) {
	h := key.Digest()
	r.mu.Lock()
	r.live[h] = struct{}{}
	r.mu.Unlock()

	if !r.cache.Set(h, ristrettoEntry[V]{key: key, value: value}, 1) {
		r.mu.Lock()
		delete(r.live, h)
		r.mu.Unlock()
		return
	}
	r.cache.Wait()
}

func (r *Ristretto[V]) Delete(key canon.Key) {
	if _, ok := r.Get(key); !ok {
		return
	}
	h := key.Digest()
	r.cache.Del(h)
	r.cache.Wait()
	r.mu.Lock()
	delete(r.live, h)
	r.mu.Unlock()
}

func (r *Ristretto[V]) Clear() {
	r.cache.Clear()
	r.mu.Lock()
	clear(r.live)
	r.mu.Unlock()
}

func (r *Ristretto[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Close stops ristretto's goroutines and drops every entry.
func (r *Ristretto[V]) Close() {
	r.cache.Close()
	r.mu.Lock()
	clear(r.live)
	r.mu.Unlock()
}
