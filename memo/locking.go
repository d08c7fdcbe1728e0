package memo

var _ Cache[any] = (*LockingFunctionCache[any])(nil)

// LockingFunctionCache is a receiver's method cache that locks the receiver for
// the duration of every call. Nested calls on the same receiver find it already
// locked and leave the lock alone.
type LockingFunctionCache[R any] struct {
	*FunctionCache[R]
	clearOnUnlock bool
	owner         *Object
}

func (c *LockingFunctionCache[R]) Call(args ...any) (R, error) {
	scope := c.owner.LockedScope(c.clearOnUnlock)
	defer scope.Close()
	return c.FunctionCache.Call(args...)
}
