package memo

import (
	"github.com/on-the-ground/memo_ive_go/bind"
)

// Func1 is a memoized func(I1) O1.
type Func1[I1, O1 any] struct {
	*FunctionCache[O1]
}

// NewFunc1 memoizes a one-argument function. The argument is named "arg0".
func NewFunc1[I1, O1 any](name string, fn func(I1) O1, opts ...Option) *Func1[I1, O1] {
	c := NewFunc(name, bind.Positional(1), func(args bind.Args) (O1, error) {
		return fn(bind.MustValue[I1](args, "arg0")), nil
	}, opts...)
	return &Func1[I1, O1]{FunctionCache: c}
}

// Get returns fn(i1), from the cache when possible.
func (f *Func1[I1, O1]) Get(i1 I1) O1 {
	return mustResult(f.Call(i1))
}

// Func2 is a memoized func(I1, I2) O1.
type Func2[I1, I2, O1 any] struct {
	*FunctionCache[O1]
}

// NewFunc2 memoizes a two-argument function. The arguments are named "arg0" and "arg1".
func NewFunc2[I1, I2, O1 any](name string, fn func(I1, I2) O1, opts ...Option) *Func2[I1, I2, O1] {
	c := NewFunc(name, bind.Positional(2), func(args bind.Args) (O1, error) {
		return fn(bind.MustValue[I1](args, "arg0"), bind.MustValue[I2](args, "arg1")), nil
	}, opts...)
	return &Func2[I1, I2, O1]{FunctionCache: c}
}

func (f *Func2[I1, I2, O1]) Get(i1 I1, i2 I2) O1 {
	return mustResult(f.Call(i1, i2))
}

// Func3 is a memoized func(I1, I2, I3) O1.
type Func3[I1, I2, I3, O1 any] struct {
	*FunctionCache[O1]
}

func NewFunc3[I1, I2, I3, O1 any](name string, fn func(I1, I2, I3) O1, opts ...Option) *Func3[I1, I2, I3, O1] {
	c := NewFunc(name, bind.Positional(3), func(args bind.Args) (O1, error) {
		return fn(
			bind.MustValue[I1](args, "arg0"),
			bind.MustValue[I2](args, "arg1"),
			bind.MustValue[I3](args, "arg2"),
		), nil
	}, opts...)
	return &Func3[I1, I2, I3, O1]{FunctionCache: c}
}

func (f *Func3[I1, I2, I3, O1]) Get(i1 I1, i2 I2, i3 I3) O1 {
	return mustResult(f.Call(i1, i2, i3))
}

// mustResult panics on error. Typed wrappers bind a fixed positional signature
// and their callables never fail.
func mustResult[O any](o O, err error) O {
	if err != nil {
		panic(err)
	}
	return o
}
