package memo

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/on-the-ground/memo_ive_go/bind"
	"github.com/on-the-ground/memo_ive_go/canon"
	"github.com/on-the-ground/memo_ive_go/store"
)

var defaultLogger atomic.Pointer[zap.Logger]

func loadDefaultLogger() *zap.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetDefaultLogger sets the logger used by caches and objects created without one.
func SetDefaultLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultLogger.Store(logger)
}

// KeyFunc derives the cache key from bound arguments.
type KeyFunc func(args bind.Args) canon.Key

// DefaultKey canonicalizes every argument value.
func DefaultKey(args bind.Args) canon.Key {
	return canon.OfArgs(args)
}

// Option configures a memoized function or method.
type Option func(*settings)

type settings struct {
	store         any // store.Factory[R]
	resultHook    any // func(R) R
	keyFn         KeyFunc
	logger        *zap.Logger
	locking       bool
	clearOnUnlock bool
}

func newSettings(opts []Option) settings {
	s := settings{
		keyFn:         DefaultKey,
		locking:       true,
		clearOnUnlock: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = loadDefaultLogger()
	}
	return s
}

// WithStore sets the cache storage. The default is an unbounded map.
func WithStore[R any](factory store.Factory[R]) Option {
	return func(s *settings) { s.store = factory }
}

// WithResultHook transforms every value read from the cache, e.g. with a copy
// function for mutable results. Stored values are never transformed.
func WithResultHook[R any](hook func(R) R) Option {
	return func(s *settings) { s.resultHook = hook }
}

// WithKeyFunc replaces DefaultKey.
func WithKeyFunc(fn KeyFunc) Option {
	return func(s *settings) { s.keyFn = fn }
}

// WithLogger sets the logger for the created caches.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// Locking controls whether a method call locks its receiver for the call's
// duration. Default: true. Only applies to receivers embedding Object.
func Locking(enabled bool) Option {
	return func(s *settings) { s.locking = enabled }
}

// ClearOnUnlock controls whether the outermost locking call disables and clears the
// receiver's caches when it unlocks. Default: true.
func ClearOnUnlock(enabled bool) Option {
	return func(s *settings) { s.clearOnUnlock = enabled }
}

func storeOf[R any](s settings) store.Factory[R] {
	if s.store == nil {
		return store.NewMap[R]
	}
	f, ok := s.store.(store.Factory[R])
	if !ok {
		panic(fmt.Sprintf("memo: store factory %T does not produce values of the cached type", s.store))
	}
	return f
}

func resultHookOf[R any](s settings) func(R) R {
	if s.resultHook == nil {
		return func(v R) R { return v }
	}
	hook, ok := s.resultHook.(func(R) R)
	if !ok {
		panic(fmt.Sprintf("memo: result hook %T does not match the cached type", s.resultHook))
	}
	return hook
}
