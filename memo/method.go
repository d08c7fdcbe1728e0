package memo

import (
	"runtime"
	"sync"
	"unsafe"
	"weak"

	"go.uber.org/zap"

	"github.com/on-the-ground/memo_ive_go/bind"
	"github.com/on-the-ground/memo_ive_go/logkeys"
	"github.com/on-the-ground/memo_ive_go/store"
)

// MethodFunc is the body of a memoized method.
type MethodFunc[T, R any] func(recv *T, args bind.Args) (R, error)

var _ descriptor = (*Method[struct{}, any])(nil)

// Method memoizes a method of *T with one independent cache per receiver.
//
// Receivers are tracked by identity: two distinct receivers that compare equal
// never share a cache. Pointers to zero-size values may all be equal, in which
// case they do share one.
//
// A receiver embedding Object keeps its caches itself, and they are collected
// with it. Other receivers are held weakly by the method's registry and their
// cache is dropped once they are collected. Package-level receivers are never
// collected and keep their cache for the life of the program. Cache keys hold
// the arguments they were computed from, so for a receiver without Object an
// argument that reaches the receiver keeps it alive.
type Method[T, R any] struct {
	name     string
	sig      *bind.Signature
	fn       MethodFunc[T, R]
	settings settings
	logger   *zap.Logger

	// guards the registries against the runtime's cleanup goroutine
	mu     sync.Mutex
	bound  map[uintptr]*binding[T, R]
	owned  map[uint64]weak.Pointer[FunctionCache[R]]
	nextID uint64
}

// binding is the cache of a receiver that does not embed Object.
type binding[T, R any] struct {
	weak   weak.Pointer[T]
	pinned *T // set for receivers the collector never frees
	cache  *FunctionCache[R]
}

func (b *binding[T, R]) holds(recv *T) bool {
	return b.pinned == recv || b.weak.Value() == recv
}

func (b *binding[T, R]) released() bool {
	return b.pinned == nil && b.weak.Value() == nil
}

// ownedCache is what survives an Object-held cache for its cleanup.
type ownedCache struct {
	id     uint64
	closer store.Closer
}

// NewMethod memoizes fn as a method of *T. A nil sig binds any call.
//
// If T embeds Object, the receiver's caches take part in its mutation protocol, and
// unless Locking(false) is given every call runs inside the receiver's locked scope.
func NewMethod[T, R any](name string, sig *bind.Signature, fn MethodFunc[T, R], opts ...Option) *Method[T, R] {
	if fn == nil {
		panic("memo: nil method " + name)
	}
	s := newSettings(opts)
	m := &Method[T, R]{
		name:     name,
		sig:      sig,
		fn:       fn,
		settings: s,
		logger:   s.logger.With(zap.String(logkeys.RegistryMethod, name)),
		bound:    make(map[uintptr]*binding[T, R]),
		owned:    make(map[uint64]weak.Pointer[FunctionCache[R]]),
	}
	register(TypeFor[T](), m)
	return m
}

func (m *Method[T, R]) Name() string { return m.name }

func (m *Method[T, R]) ClassScoped() bool { return false }

// For returns recv's cache, creating it on first use.
func (m *Method[T, R]) For(recv *T) Cache[R] {
	if recv == nil {
		panic("memo: nil receiver for " + m.name)
	}
	if owner, ok := any(recv).(Owner); ok {
		return m.forOwner(recv, owner.memoObject())
	}
	return m.forValue(recv)
}

// forOwner keeps the cache on the receiver's Object. The cache holds the receiver
// and the registry holds the cache weakly, so both are collected together.
func (m *Method[T, R]) forOwner(recv *T, obj *Object) Cache[R] {
	if c, ok := obj.methodCache(m); ok {
		return c.(Cache[R])
	}

	fc := newFunctionCache(m.name, m.sig, func(args bind.Args) (R, error) {
		return m.fn(recv, args)
	}, m.settings)
	obj.attach(fc)

	var c Cache[R] = fc
	if m.settings.locking {
		c = &LockingFunctionCache[R]{
			FunctionCache: fc,
			clearOnUnlock: m.settings.clearOnUnlock,
			owner:         obj,
		}
	}
	obj.setMethodCache(m, c)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.owned[id] = weak.Make(fc)
	m.mu.Unlock()

	// only a store with resources of its own is handed to the cleanup
	closer, _ := fc.entries.(store.Closer)
	runtime.AddCleanup(fc, m.releaseOwned, ownedCache{id: id, closer: closer})
	return c
}

func (m *Method[T, R]) forValue(recv *T) Cache[R] {
	addr := uintptr(unsafe.Pointer(recv))

	m.mu.Lock()
	b, ok := m.bound[addr]
	m.mu.Unlock()
	if ok && b.holds(recv) {
		return b.cache
	}

	b = m.bind(recv, addr)
	m.mu.Lock()
	// a collected receiver at the same address whose release is still pending
	stale := m.bound[addr]
	m.bound[addr] = b
	m.mu.Unlock()
	if stale != nil {
		stale.cache.Close()
	}
	return b.cache
}

// bind builds the binding of a receiver without Object. Nothing it creates may
// hold a collectable receiver strongly, or the registry would keep it alive.
func (m *Method[T, R]) bind(recv *T, addr uintptr) *binding[T, R] {
	b := &binding[T, R]{}
	if runtime.AddCleanup(recv, m.release, addr) == (runtime.Cleanup{}) {
		// not heap allocated: a package-level variable or a zero-size value
		b.pinned = recv
	} else {
		b.weak = weak.Make(recv)
	}

	pinned, wp := b.pinned, b.weak
	b.cache = newFunctionCache(m.name, m.sig, func(args bind.Args) (R, error) {
		r := pinned
		if r == nil {
			r = wp.Value()
		}
		if r == nil {
			var zero R
			return zero, ErrReleased
		}
		return m.fn(r, args)
	}, m.settings)
	return b
}

func (m *Method[T, R]) release(addr uintptr) {
	m.mu.Lock()
	b, ok := m.bound[addr]
	if !ok || !b.released() {
		m.mu.Unlock()
		return
	}
	delete(m.bound, addr)
	size := len(m.bound) + len(m.owned)
	m.mu.Unlock()

	b.cache.Close()
	m.logger.Debug("memo: released receiver cache", zap.Int(logkeys.RegistrySize, size))
}

func (m *Method[T, R]) releaseOwned(c ownedCache) {
	m.mu.Lock()
	delete(m.owned, c.id)
	size := len(m.bound) + len(m.owned)
	m.mu.Unlock()

	if c.closer != nil {
		c.closer.Close()
	}
	m.logger.Debug("memo: released receiver cache", zap.Int(logkeys.RegistrySize, size))
}

// Call is shorthand for m.For(recv).Call(args...).
func (m *Method[T, R]) Call(recv *T, args ...any) (R, error) {
	return m.For(recv).Call(args...)
}

// Clear clears recv's cache, or every receiver's cache when recv is nil.
func (m *Method[T, R]) Clear(recv *T) {
	for _, c := range m.caches(recv) {
		c.Clear()
	}
}

// Len returns the number of receivers with a live cache.
func (m *Method[T, R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bound) + len(m.owned)
}

func (m *Method[T, R]) caches(recv *T) []Cache[R] {
	if recv != nil {
		if owner, ok := any(recv).(Owner); ok {
			if c, ok := owner.memoObject().methodCache(m); ok {
				return []Cache[R]{c.(Cache[R])}
			}
			return nil
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if b, ok := m.bound[uintptr(unsafe.Pointer(recv))]; ok && b.holds(recv) {
			return []Cache[R]{b.cache}
		}
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Cache[R], 0, len(m.bound)+len(m.owned))
	for _, b := range m.bound {
		out = append(out, b.cache)
	}
	for _, wp := range m.owned {
		if fc := wp.Value(); fc != nil {
			out = append(out, fc)
		}
	}
	return out
}
