package memo

// Scope restores an Object's state when closed. Close is idempotent; pair it with
// defer so the state is restored on every exit path, panics included.
type Scope struct {
	closeFn func()
	closed  bool
}

// noopScope is returned by reentrant LockedScope calls.
func noopScope() *Scope {
	return &Scope{closed: true}
}

func (s *Scope) Close() {
	if !s.closed {
		s.closed = true
		s.closeFn()
	}
}
