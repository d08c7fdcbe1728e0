// Package store holds the entry storage behind a memo cache.
//
// A Store is owned by exactly one cache and is used from one goroutine at a time;
// implementations are not synchronized.
package store

import "github.com/on-the-ground/memo_ive_go/canon"

// Store maps canonical keys to cached values. Keys are indexed by their ID and
// kept with the value, so the referents a key pins live as long as its entry.
type Store[V any] interface {
	Get(key canon.Key) (V, bool)
	Set(key canon.Key, value V)
	// Delete is idempotent: deleting an absent key is a no-op.
	Delete(key canon.Key)
	Clear()
	Len() int
}

// Closer is implemented by stores holding resources beyond memory.
type Closer interface {
	Close()
}

// Close releases s if it is a Closer. A closed store must not be used again.
func Close[V any](s Store[V]) {
	if c, ok := s.(Closer); ok {
		c.Close()
	}
}

type entry[V any] struct {
	key   canon.Key
	value V
}

// Factory creates the Store for a new cache.
type Factory[V any] func() Store[V]

// Config sizes bounded stores.
type Config struct {
	MaxEntries int // default: 1024
}

// DefaultMaxEntries is used when Config.MaxEntries is not positive.
const DefaultMaxEntries = 1024

func NewConfig(maxEntries int) Config {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return Config{MaxEntries: maxEntries}
}

var _ Store[any] = Map[any]{}

// Map is the unbounded default store.
type Map[V any] map[canon.ID]entry[V]

func NewMap[V any]() Store[V] {
	return Map[V]{}
}

func (m Map[V]) Get(key canon.Key) (V, bool) {
	e, ok := m[key.ID]
	return e.value, ok
}

func (m Map[V]) Set(key canon.Key, value V) { m[key.ID] = entry[V]{key: key, value: value} }

func (m Map[V]) Delete(key canon.Key) { delete(m, key.ID) }

func (m Map[V]) Clear() { clear(m) }

func (m Map[V]) Len() int { return len(m) }
