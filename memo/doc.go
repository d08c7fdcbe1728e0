// Package memo memoizes functions and methods and keeps their caches honest.
//
// A memoized callable caches its results keyed by its canonicalized, fully bound
// arguments. The hard part is not the cache itself but knowing when a cached value
// may no longer be served. memo couples every method cache to its receiver:
//
//   - FunctionCache is the unit of caching: entries, an enabled flag, a result hook.
//   - Method keeps one FunctionCache per receiver, keyed by identity. A receiver
//     embedding Object stores its caches itself; other receivers are held weakly.
//     Either way a receiver's cache goes away with the receiver.
//   - ClassMethod keeps one FunctionCache per runtime type instead of per receiver.
//   - Object, embedded in a receiver type, carries the mutation protocol: a locked
//     object refuses mutation and keeps its caches enabled; an unlocked object clears
//     its caches before every guarded write or mutating call.
//
// Methods lock their receiver for the duration of a call by default, so a cached
// method may call other cached methods on the same receiver and every nested call
// sees one consistent, immutable object. Nested locks are no-ops; only the outermost
// call unlocks.
//
// # Example
//
//	type Sum struct {
//	    memo.Object
//	    base int
//	}
//
//	var plus = memo.NewMethod("Plus", bind.Positional(1),
//	    func(s *Sum, args bind.Args) (int, error) {
//	        return s.base + bind.MustValue[int](args, "arg0"), nil
//	    })
//
//	func (s *Sum) Plus(n int) (int, error) { return plus.Call(s, n) }
//	func (s *Sum) SetBase(b int) error     { return memo.Set(s, "base", &s.base, b) }
//
// Only writes made through Set (or preceded by Object.Touch) are guarded. A plain
// assignment to a field of a receiver bypasses the protocol.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use of one object or cache.
// Serialize access per object (for example with one mutex per instance) if needed.
// The only internal lock guards Method registries, because the Go runtime releases
// collected receivers from its own goroutine.
//
// # Limits
//
// Invalidation is per object. If B caches something read through A, mutating A does
// not clear B unless A is told about B with MutatesWith. There is no dependency
// tracking.
package memo
