package memo

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/memo_ive_go/bind"
	"github.com/on-the-ground/memo_ive_go/logkeys"
	"github.com/on-the-ground/memo_ive_go/store"
)

// Callable is the function behind a FunctionCache.
type Callable[R any] func(args bind.Args) (R, error)

// Cache is the contract shared by every memoized callable, whether it is a free
// function, a receiver's method cache or a type's class method cache.
type Cache[R any] interface {
	// Call returns the cached result for args, computing and storing it on a miss.
	// Errors from the callable are returned as is and never cached.
	Call(args ...any) (R, error)
	// Remove drops the entry for args. Removing an absent entry is a no-op.
	Remove(args ...any) error
	// Contains reports whether args currently have an entry.
	Contains(args ...any) (bool, error)
	// Clear drops every entry. It does not change the enabled flag.
	Clear()
	Enable()
	// Disable makes Call bypass the cache. Entries are kept.
	Disable()
	IsEnabled() bool
	Len() int
	Name() string
	ID() string
}

// cacheControl is what Object needs to fan invalidation out to a cache.
type cacheControl interface {
	Enable()
	Disable()
	Clear()
}

var _ Cache[any] = (*FunctionCache[any])(nil)

// FunctionCache caches the results of one callable, or of one method for one receiver.
type FunctionCache[R any] struct {
	id       string
	name     string
	sig      *bind.Signature
	fn       Callable[R]
	entries  store.Store[R]
	onReturn func(R) R
	keyFn    KeyFunc
	enabled  bool
	logger   *zap.Logger
}

func newFunctionCache[R any](name string, sig *bind.Signature, fn Callable[R], s settings) *FunctionCache[R] {
	if fn == nil {
		panic("memo: nil callable for " + name)
	}
	if sig == nil {
		sig = bind.Variadic()
	}
	id := uuid.New().String()
	return &FunctionCache[R]{
		id:       id,
		name:     name,
		sig:      sig,
		fn:       fn,
		entries:  storeOf[R](s)(),
		onReturn: resultHookOf[R](s),
		keyFn:    s.keyFn,
		enabled:  true,
		logger:   s.logger.With(zap.String(logkeys.CacheName, name), zap.String(logkeys.CacheID, id)),
	}
}

// NewFunc memoizes fn. A nil sig binds any call (bind.Variadic).
func NewFunc[R any](name string, sig *bind.Signature, fn Callable[R], opts ...Option) *FunctionCache[R] {
	return newFunctionCache(name, sig, fn, newSettings(opts))
}

func (c *FunctionCache[R]) Call(args ...any) (R, error) {
	bound, err := c.sig.Bind(args...)
	if err != nil {
		var zero R
		return zero, err
	}

	if !c.enabled {
		return c.fn(bound)
	}

	key := c.keyFn(bound)
	if v, ok := c.entries.Get(key); ok {
		return c.onReturn(v), nil
	}

	v, err := c.fn(bound)
	if err != nil {
		return v, err
	}
	c.entries.Set(key, v)
	c.logger.Debug("memo: stored result",
		zap.Uint64(logkeys.KeyDigest, key.Digest()),
		zap.Int(logkeys.CacheEntries, c.entries.Len()),
	)
	return c.onReturn(v), nil
}

func (c *FunctionCache[R]) Remove(args ...any) error {
	bound, err := c.sig.Bind(args...)
	if err != nil {
		return err
	}
	key := c.keyFn(bound)
	c.entries.Delete(key)
	c.logger.Debug("memo: removed entry", zap.Uint64(logkeys.KeyDigest, key.Digest()))
	return nil
}

func (c *FunctionCache[R]) Contains(args ...any) (bool, error) {
	bound, err := c.sig.Bind(args...)
	if err != nil {
		return false, err
	}
	_, ok := c.entries.Get(c.keyFn(bound))
	return ok, nil
}

func (c *FunctionCache[R]) Clear() {
	if c.entries.Len() == 0 {
		return
	}
	c.entries.Clear()
	c.logger.Debug("memo: cleared")
}

func (c *FunctionCache[R]) Enable() { c.setEnabled(true) }

func (c *FunctionCache[R]) Disable() { c.setEnabled(false) }

func (c *FunctionCache[R]) setEnabled(enabled bool) {
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	c.logger.Debug("memo: toggled", zap.Bool(logkeys.CacheEnabled, enabled))
}

func (c *FunctionCache[R]) IsEnabled() bool { return c.enabled }

func (c *FunctionCache[R]) Len() int { return c.entries.Len() }

func (c *FunctionCache[R]) Name() string { return c.name }

// ID identifies this cache instance in logs.
func (c *FunctionCache[R]) ID() string { return c.id }

// Close releases the cache's store. Only needed for stores that hold resources,
// such as store.Ristretto; method caches are closed when their receiver is released.
// A closed cache must not be used again.
func (c *FunctionCache[R]) Close() {
	store.Close(c.entries)
}
