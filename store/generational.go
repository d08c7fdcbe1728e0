package store

import "github.com/on-the-ground/memo_ive_go/canon"

var _ Store[any] = (*Generational[any])(nil)

// Generational is a bounded store made of two generations.
// Writes go to the head generation; once it holds MaxEntries/2 entries the
// generations rotate and the oldest one is dropped. Reads check both.
type Generational[V any] struct {
	gens    [2]map[canon.ID]entry[V]
	headIdx int
	genSize int
}

// NewGenerational returns a Factory for Generational stores sized by cfg.
func NewGenerational[V any](cfg Config) Factory[V] {
	cfg = NewConfig(cfg.MaxEntries)
	genSize := max(cfg.MaxEntries/2, 1)
	return func() Store[V] {
		return &Generational[V]{
			gens:    [2]map[canon.ID]entry[V]{{}, {}},
			genSize: genSize,
		}
	}
}

func (g *Generational[V]) Get(key canon.Key) (V, bool) {
	if e, ok := g.gens[g.headIdx][key.ID]; ok {
		return e.value, true
	}
	e, ok := g.gens[1-g.headIdx][key.ID]
	return e.value, ok
}

func (g *Generational[V]) Set(key canon.Key, value V) {
	head := g.gens[g.headIdx]
	if _, ok := head[key.ID]; !ok && len(head) >= g.genSize {
		g.headIdx = 1 - g.headIdx
		clear(g.gens[g.headIdx])
		head = g.gens[g.headIdx]
	}
	delete(g.gens[1-g.headIdx], key.ID)
	head[key.ID] = entry[V]{key: key, value: value}
}

func (g *Generational[V]) Delete(key canon.Key) {
	delete(g.gens[0], key.ID)
	delete(g.gens[1], key.ID)
}

func (g *Generational[V]) Clear() {
	clear(g.gens[0])
	clear(g.gens[1])
}

func (g *Generational[V]) Len() int {
	return len(g.gens[0]) + len(g.gens[1])
}
