package bind

import "fmt"

// Args maps parameter names to their effective values for one call.
type Args map[string]any

// Get returns the raw value bound to name.
func (a Args) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Value returns the argument bound to name as a T.
// A nil argument yields T's zero value.
func Value[T any](a Args, name string) (T, error) {
	var zero T

	raw, ok := a[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNoSuchArg, name)
	}
	if raw == nil {
		return zero, nil
	}

	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T", ErrUnexpectedType, name, raw)
	}
	return val, nil
}

// MustValue is the panic-on-failure variant of Value.
// Use when the Signature guarantees the argument exists and its type is checked upstream.
func MustValue[T any](a Args, name string) T {
	v, err := Value[T](a, name)
	if err != nil {
		panic(err)
	}
	return v
}
