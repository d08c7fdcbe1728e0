package store

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/on-the-ground/memo_ive_go/canon"
)

var _ Store[any] = LRU[any]{}

// LRU evicts the least recently used entry once MaxEntries is reached.
type LRU[V any] struct {
	*lru.Cache[canon.ID, entry[V]]
}

// NewLRU returns a Factory for LRU stores sized by cfg.
func NewLRU[V any](cfg Config) Factory[V] {
	cfg = NewConfig(cfg.MaxEntries)
	return func() Store[V] {
		c, err := lru.New[canon.ID, entry[V]](cfg.MaxEntries)
		if err != nil {
			// only returned for a non-positive size, which NewConfig rules out
			panic(err)
		}
		return LRU[V]{Cache: c}
	}
}

func (l LRU[V]) Get(key canon.Key) (V, bool) {
	e, ok := l.Cache.Get(key.ID)
	return e.value, ok
}

func (l LRU[V]) Set(key canon.Key, value V) {
	l.Cache.Add(key.ID, entry[V]{key: key, value: value})
}

func (l LRU[V]) Delete(key canon.Key) {
	l.Cache.Remove(key.ID)
}

func (l LRU[V]) Clear() {
	l.Cache.Purge()
}

func (l LRU[V]) Len() int {
	return l.Cache.Len()
}
