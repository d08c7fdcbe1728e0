package memo

import "errors"

var (
	// ErrLockedMutation is returned when a mutating method or a guarded write
	// runs against a locked object.
	ErrLockedMutation = errors.New("memo: mutation of locked object")

	// ErrReleased is returned when a method cache outlives its receiver.
	ErrReleased = errors.New("memo: receiver has been released")
)
